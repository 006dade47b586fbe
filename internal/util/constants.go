package util

const (
	StorageLocal = "local"
	StorageMinio = "minio"
	StorageOSS   = "oss"
)

// 录音上传相关常量
const (
	MimeAudio       = "audio/"
	MimeWebm        = "video/webm" // 浏览器 MediaRecorder 产出的 webm 容器常被探测为 video/webm
	MimeOggApp      = "application/ogg"
	MimeOctetStream = "application/octet-stream"
)

var (
	AllowedAudioExtensions = []string{".webm", ".ogg", ".mp3", ".wav", ".m4a", ".aac"}
)
