package database

import (
	"encoding/json"
	"fmt"
	"log"

	"lsr_trainer_backend/internal/config"
	"lsr_trainer_backend/internal/model"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		cfg.Charset,
		cfg.ParseTime,
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})

	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	if err := Migrate(db); err != nil {
		return nil, err
	}

	log.Println("Database migration completed")

	SeedCatalog(db)

	return db, nil
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.TrainingModule{},
		&model.Exercise{},
		&model.ExerciseQuestion{},
		&model.ModuleProgress{},
		&model.Recording{},
	)
}

// SeedCatalog 题库为空时写入默认的四个训练模块及其练习。
func SeedCatalog(db *gorm.DB) {
	var count int64
	db.Model(&model.TrainingModule{}).Count(&count)
	if count > 0 {
		return
	}

	modules := []model.TrainingModule{
		{
			Key:           model.ModuleListening,
			Title:         "听力理解",
			Description:   "听材料后在限定时间内作答",
			Capture:       model.CaptureChoice,
			Priming:       model.PrimingPlayback,
			AnswerSeconds: 30,
			TotalPlanned:  10,
			Order:         1,
		},
		{
			Key:          model.ModuleSpeaking,
			Title:        "口语表达",
			Description:  "对照提示录音作答",
			Capture:      model.CaptureRecording,
			Priming:      model.PrimingNone,
			TotalPlanned: 8,
			Order:        2,
		},
		{
			Key:               model.ModuleReading,
			Title:             "阅读理解",
			Description:       "限时阅读文章并回答全部子题",
			Capture:           model.CaptureChoice,
			Priming:           model.PrimingNone,
			AnswerSeconds:     300,
			RequireAllAnswers: true,
			TotalPlanned:      12,
			Order:             3,
		},
		{
			Key:          model.ModuleMockInterview,
			Title:        "模拟面试",
			Description:  "按题准备 30 秒后限时录音作答",
			Capture:      model.CaptureRecording,
			Priming:      model.PrimingCountdown,
			PrepSeconds:  30,
			TotalPlanned: 5,
			Order:        4,
		},
	}
	for i := range modules {
		db.Create(&modules[i])
	}

	seedListening(db)
	seedSpeaking(db)
	seedReading(db)
	seedMockInterview(db)
	log.Println("Default training catalog seeded")
}

func mustJSON(v interface{}) json.RawMessage {
	b, _ := json.Marshal(v)
	return b
}

func seedListening(db *gorm.DB) {
	type item struct {
		title    string
		audio    string
		question string
		options  []string
		correct  int
	}
	items := []item{
		{
			title:    "Company Introduction",
			audio:    "Welcome to TechCorp. We are a leading software development company specializing in innovative solutions for businesses worldwide. Our team consists of experienced developers, designers, and project managers who work together to deliver high-quality products.",
			question: "What type of company is TechCorp?",
			options:  []string{"A hardware manufacturing company", "A software development company", "A consulting firm", "A financial services company"},
			correct:  1,
		},
		{
			title:    "Interview Process",
			audio:    "Our interview process consists of three rounds: first, a technical assessment to evaluate your coding skills; second, an HR interview to discuss your background and experience; and finally, a discussion with the team lead to assess cultural fit and project alignment.",
			question: "How many rounds are in the interview process?",
			options:  []string{"Two rounds", "Three rounds", "Four rounds", "Five rounds"},
			correct:  1,
		},
		{
			title:    "Work Environment",
			audio:    "At our company, we believe in maintaining a healthy work-life balance. We offer flexible working hours, remote work options twice a week, and comprehensive health benefits. Our office environment is collaborative and open, encouraging creativity and innovation among team members.",
			question: "How many days per week can employees work remotely?",
			options:  []string{"One day", "Two days", "Three days", "Every day"},
			correct:  1,
		},
	}
	for i, it := range items {
		ex := model.Exercise{
			ModuleKey: model.ModuleListening,
			Title:     it.title,
			AudioText: it.audio,
			Order:     i + 1,
		}
		db.Create(&ex)
		db.Create(&model.ExerciseQuestion{
			ExerciseID: ex.ID,
			Content:    it.question,
			Options:    mustJSON(it.options),
			Correct:    it.correct,
			Order:      1,
		})
	}
}

func seedSpeaking(db *gorm.DB) {
	exercises := []model.Exercise{
		{
			ModuleKey:    model.ModuleSpeaking,
			Title:        "Self Introduction",
			Prompt:       "Introduce yourself to the interviewer. Include your name, educational background, and key skills.",
			TimeLimit:    60,
			KeyPoints:    mustJSON([]string{"Name", "Education", "Skills", "Experience"}),
			SampleAnswer: "Hello, my name is John Smith. I recently graduated with a degree in Computer Science from XYZ University...",
			Order:        1,
		},
		{
			ModuleKey:    model.ModuleSpeaking,
			Title:        "Why This Company?",
			Prompt:       "Explain why you want to work for this company and what interests you about the role.",
			TimeLimit:    45,
			KeyPoints:    mustJSON([]string{"Company Research", "Role Interest", "Career Goals", "Value Addition"}),
			SampleAnswer: "I'm interested in this company because of its innovative approach to technology...",
			Order:        2,
		},
	}
	for i := range exercises {
		db.Create(&exercises[i])
	}
}

func seedReading(db *gorm.DB) {
	type q struct {
		content string
		options []string
		correct int
	}
	type item struct {
		title     string
		passage   string
		questions []q
	}
	items := []item{
		{
			title: "Company Culture and Values",
			passage: `TechCorp has established itself as a leading software development company by prioritizing innovation, collaboration, and employee growth. Founded in 2010, the company has grown from a small startup to a multinational corporation with over 5,000 employees worldwide.

The company's core values center around three main principles: Innovation, Integrity, and Inclusivity. Innovation drives the development of cutting-edge solutions that solve real-world problems. Integrity ensures that all business practices are ethical and transparent. Inclusivity creates a diverse workplace where every employee feels valued and empowered to contribute their unique perspectives.

TechCorp's commitment to employee development is evident through its comprehensive training programs, mentorship opportunities, and career advancement pathways. The company invests heavily in continuous learning, offering employees access to online courses, conferences, and workshops. This investment in human capital has resulted in high employee satisfaction rates and low turnover.

The company's agile work environment encourages creativity and quick adaptation to market changes. Teams are organized around projects with clear objectives and deadlines. Regular retrospectives and feedback sessions ensure continuous improvement in both processes and products.

TechCorp's success can also be attributed to its strong emphasis on work-life balance. The company offers flexible working hours, remote work options, and comprehensive health benefits. This approach has attracted top talent from around the world and established TechCorp as an employer of choice in the technology sector.`,
			questions: []q{
				{"When was TechCorp founded?", []string{"2008", "2010", "2012", "2015"}, 1},
				{"How many core values does TechCorp have?", []string{"Two", "Three", "Four", "Five"}, 1},
				{"What contributes to TechCorp's low employee turnover?", []string{"High salaries only", "Remote work options only", "Investment in employee development and training", "Flexible deadlines"}, 2},
			},
		},
		{
			title: "Project Management Methodologies",
			passage: `Modern software development relies heavily on effective project management methodologies to deliver high-quality products on time and within budget. Among the various approaches available, Agile and Waterfall methodologies represent two fundamentally different philosophies.

The Waterfall methodology follows a linear, sequential approach where each phase must be completed before the next begins. This method works well for projects with clearly defined requirements that are unlikely to change. The structured nature of Waterfall makes it easier to manage timelines and budgets, but it can be inflexible when changes are needed.

Agile methodology, in contrast, emphasizes iterative development and continuous feedback. Projects are broken down into short sprints, typically lasting 2-4 weeks, with working software delivered at the end of each sprint. This approach allows for greater flexibility and adaptation to changing requirements but requires more active stakeholder involvement.

Many organizations have adopted hybrid approaches that combine elements of both methodologies. These approaches allow teams to maintain the structure and predictability of Waterfall while incorporating the flexibility and customer feedback loops of Agile.

The choice between methodologies often depends on factors such as project complexity, team size, customer involvement, and organizational culture. Successful project managers understand these factors and select the most appropriate methodology for their specific context.`,
			questions: []q{
				{"What is a key characteristic of the Waterfall methodology?", []string{"Iterative development cycles", "Linear, sequential approach", "Continuous customer feedback", "Short development sprints"}, 1},
				{"How long do Agile sprints typically last?", []string{"1-2 weeks", "2-4 weeks", "4-6 weeks", "6-8 weeks"}, 1},
				{"What do hybrid approaches combine?", []string{"Only Agile principles", "Only Waterfall structure", "Elements of both Agile and Waterfall", "Neither methodology"}, 2},
			},
		},
	}
	for i, it := range items {
		ex := model.Exercise{
			ModuleKey: model.ModuleReading,
			Title:     it.title,
			Passage:   it.passage,
			Order:     i + 1,
		}
		db.Create(&ex)
		for j, qq := range it.questions {
			db.Create(&model.ExerciseQuestion{
				ExerciseID: ex.ID,
				Content:    qq.content,
				Options:    mustJSON(qq.options),
				Correct:    qq.correct,
				Order:      j + 1,
			})
		}
	}
}

func seedMockInterview(db *gorm.DB) {
	exercises := []model.Exercise{
		{
			ModuleKey: model.ModuleMockInterview,
			Title:     "Personal Introduction",
			Prompt:    "Tell me about yourself and why you're interested in this position.",
			Category:  "Personal Introduction",
			TimeLimit: 90,
			KeyPoints: mustJSON([]string{"Background", "Skills", "Interest in role", "Career goals"}),
			Order:     1,
		},
		{
			ModuleKey: model.ModuleMockInterview,
			Title:     "Problem Solving",
			Prompt:    "Describe a challenging project you worked on and how you overcame the difficulties.",
			Category:  "Problem Solving",
			TimeLimit: 120,
			KeyPoints: mustJSON([]string{"Specific challenge", "Actions taken", "Results achieved", "Lessons learned"}),
			Order:     2,
		},
		{
			ModuleKey: model.ModuleMockInterview,
			Title:     "Career Goals",
			Prompt:    "Where do you see yourself in 5 years, and how does this role fit into your career plans?",
			Category:  "Career Goals",
			TimeLimit: 90,
			KeyPoints: mustJSON([]string{"Career vision", "Growth plans", "Company alignment", "Realistic goals"}),
			Order:     3,
		},
		{
			ModuleKey: model.ModuleMockInterview,
			Title:     "Strengths & Skills",
			Prompt:    "What are your greatest strengths and how would they benefit our team?",
			Category:  "Strengths & Skills",
			TimeLimit: 90,
			KeyPoints: mustJSON([]string{"Specific strengths", "Examples", "Team benefit", "Relevance to role"}),
			Order:     4,
		},
		{
			ModuleKey: model.ModuleMockInterview,
			Title:     "Your Questions",
			Prompt:    "Do you have any questions for me about the company or the role?",
			Category:  "Your Questions",
			TimeLimit: 60,
			KeyPoints: mustJSON([]string{"Company culture", "Role expectations", "Growth opportunities", "Team dynamics"}),
			Order:     5,
		},
	}
	for i := range exercises {
		db.Create(&exercises[i])
	}
}
