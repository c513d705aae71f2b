// Package seed содержит стартовые посты для пустого форума
// и генератор фейкового контента для демо.
package seed

import (
	"strings"
	"time"

	"github.com/ButyrinIA/anonforum/internal/models"
	"github.com/brianvoe/gofakeit/v6"
)

type sample struct {
	title    string
	content  string
	category string
	tags     []string
	age      time.Duration
	likes    int
	comments []sampleComment
}

type sampleComment struct {
	anonID  string
	content string
	age     time.Duration
}

var samples = []sample{
	{
		title:    "Is crypto really the future?",
		content:  "Everyone says crypto will replace traditional money, but the volatility is wild. Bitcoin burns electricity and Ethereum gas fees are painful. What do you think about the future of cryptocurrency? Worth investing?",
		category: models.CategoryCrypto,
		tags:     []string{"bitcoin", "ethereum", "investment", "future"},
		age:      3 * time.Hour,
		likes:    15,
		comments: []sampleComment{
			{"CryptoFan2024", "Blockchain has real potential, it just needs time to stabilize.", 2 * time.Hour},
			{"SafeInvestor", "Only put in what you can afford to lose. Do your own research.", time.Hour},
		},
	},
	{
		title:    "Is remote work actually good?",
		content:  "Two years fully remote. It felt like freedom at first, now it mostly feels lonely. No hallway chats and the line between work and life is gone. Anyone else? Share what works for you!",
		category: models.CategorySociety,
		tags:     []string{"remote work", "work life balance", "career", "mental health"},
		age:      6 * time.Hour,
		likes:    23,
		comments: []sampleComment{
			{"RemoteWarrior", "Same here. A coworking space a couple of days a week helped a lot.", 5 * time.Hour},
			{"WorkFromHome", "A separate workspace and a strict schedule. And see your friends.", 4 * time.Hour},
			{"HybridLover", "Hybrid is the sweet spot: three days in the office, two at home.", 3 * time.Hour},
		},
	},
	{
		title:    "Will AI replace developers?",
		content:  "Code assistants keep getting better. They write whole apps and are decent at debugging. Will this job still exist in 5 to 10 years, or which skills should we learn to adapt?",
		category: models.CategoryTech,
		tags:     []string{"ai", "programming", "future", "career", "chatgpt"},
		age:      time.Hour,
		likes:    31,
		comments: []sampleComment{
			{"SeniorDev", "It is a tool. Someone still has to design the system and understand the requirements.", 45 * time.Minute},
			{"AIOptimist", "It boosts productivity more than it replaces people. Focus on problem solving.", 30 * time.Minute},
		},
	},
	{
		title:    "Burned out by endless deadlines",
		content:  "One deadline after another, overlapping projects and meetings all day. I feel like a robot. Any tips for managing stress, or should I just quit?",
		category: models.CategoryConfession,
		tags:     []string{"stress", "work", "deadline", "mental health"},
		age:      4 * time.Hour,
		likes:    18,
		comments: []sampleComment{
			{"SupportiveColleague", "Talk to your manager about the workload, they may not know how overloaded you are.", 3 * time.Hour},
		},
	},
	{
		title:    "Which framework should I learn first?",
		content:  "Beginner here. React, Vue, Angular, Svelte... too many options. Seniors, what would you pick to land a first job?",
		category: models.CategoryQuestion,
		tags:     []string{"web development", "framework", "learning", "career advice"},
		age:      30 * time.Minute,
		likes:    12,
	},
}

// Samples возвращает стартовые посты с временем относительно now.
// ID и имена авторов постов назначает хранилище.
func Samples(now time.Time) []models.Post {
	posts := make([]models.Post, 0, len(samples))
	for _, s := range samples {
		comments := make([]models.Comment, 0, len(s.comments))
		for _, c := range s.comments {
			comments = append(comments, models.Comment{
				AnonID:    c.anonID,
				Content:   c.content,
				Timestamp: now.Add(-c.age).UnixMilli(),
			})
		}
		posts = append(posts, models.Post{
			Title:     s.title,
			Content:   s.content,
			Category:  s.category,
			Tags:      append([]string(nil), s.tags...),
			Timestamp: now.Add(-s.age).UnixMilli(),
			Likes:     s.likes,
			Comments:  comments,
		})
	}
	return posts
}

// FakePost - сгенерированный пост вместе с ответами
type FakePost struct {
	Post     models.PostInput
	Comments []models.CommentInput
}

// Fake генерирует n постов. Одинаковый seed дает одинаковый результат.
func Fake(n int, seed int64) []FakePost {
	faker := gofakeit.New(seed)

	out := make([]FakePost, 0, n)
	for i := 0; i < n; i++ {
		tags := make([]string, faker.Number(0, 4))
		for j := range tags {
			tags[j] = faker.Word()
		}

		comments := make([]models.CommentInput, faker.Number(0, 3))
		for j := range comments {
			comments[j] = models.CommentInput{Content: faker.Sentence(faker.Number(3, 12))}
		}

		out = append(out, FakePost{
			Post: models.PostInput{
				Title:    strings.TrimSuffix(faker.Sentence(faker.Number(3, 8)), "."),
				Content:  faker.Paragraph(1, 3, 8, " "),
				Category: faker.RandomString(models.Categories),
				Tags:     strings.Join(tags, ", "),
			},
			Comments: comments,
		})
	}
	return out
}
