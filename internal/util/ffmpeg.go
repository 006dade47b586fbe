package util

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// AudioInfo 录音文件的元数据
type AudioInfo struct {
	Duration   float64 `json:"duration"` // 秒
	SampleRate int     `json:"sampleRate"`
	Channels   int     `json:"channels"`
	Format     string  `json:"format"`
	Size       int64   `json:"size"`
}

// GetAudioInfo 使用 ffmpeg-go 的 Probe 获取录音元数据。
// 用于校验学员上传的录音时长与引擎记录的作答用时是否吻合。
func GetAudioInfo(audioPath string) (*AudioInfo, error) {
	fileInfo, err := os.Stat(audioPath)
	if err != nil {
		return nil, fmt.Errorf("录音文件不存在: %v", err)
	}

	jsonOutput, err := ffmpeg.Probe(audioPath)
	if err != nil {
		return nil, fmt.Errorf("获取录音信息失败: %v", err)
	}

	var result struct {
		Streams []struct {
			CodecType  string `json:"codec_type"`
			SampleRate string `json:"sample_rate"`
			Channels   int    `json:"channels"`
		} `json:"streams"`
		Format struct {
			Duration string `json:"duration"`
			Size     string `json:"size"`
			Format   string `json:"format_name"`
		} `json:"format"`
	}

	if err := json.Unmarshal([]byte(jsonOutput), &result); err != nil {
		return nil, fmt.Errorf("解析录音信息失败: %v", err)
	}

	var sampleRate, channels int
	for _, stream := range result.Streams {
		if stream.CodecType == "audio" {
			sampleRate, _ = strconv.Atoi(stream.SampleRate)
			channels = stream.Channels
			break
		}
	}

	duration, err := strconv.ParseFloat(result.Format.Duration, 64)
	if err != nil {
		duration = 0
	}

	size, err := strconv.ParseInt(result.Format.Size, 10, 64)
	if err != nil {
		size = fileInfo.Size()
	}

	format := "unknown"
	if len(result.Format.Format) > 0 {
		formatParts := strings.Split(result.Format.Format, ",")
		if len(formatParts) > 0 {
			format = formatParts[0]
		}
	}

	return &AudioInfo{
		Duration:   duration,
		SampleRate: sampleRate,
		Channels:   channels,
		Format:     format,
		Size:       size,
	}, nil
}
