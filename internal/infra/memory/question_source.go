package memory

import (
	"context"
	"html"
	"strconv"

	"trivia-quiz-service/internal/domain"
)

// StaticQuestionSource serves a fixed question pool (useful for tests/demos and offline play).
type StaticQuestionSource struct {
	questions  []domain.RawQuestion
	categories []domain.Category
}

func NewStaticQuestionSource(questions []domain.RawQuestion, categories []domain.Category) *StaticQuestionSource {
	return &StaticQuestionSource{questions: questions, categories: categories}
}

// FetchQuestions returns up to settings.Amount questions of the requested
// difficulty and category. An empty selection maps to the "no results"
// response code.
func (s *StaticQuestionSource) FetchQuestions(_ context.Context, settings domain.QuizSettings) ([]domain.RawQuestion, error) {
	category := s.categoryName(settings.Category)
	out := make([]domain.RawQuestion, 0, settings.Amount)
	for _, q := range s.questions {
		if len(out) == settings.Amount {
			break
		}
		if q.Difficulty != settings.Difficulty {
			continue
		}
		if category != "" && html.UnescapeString(q.Category) != category {
			continue
		}
		out = append(out, q)
	}
	if len(out) == 0 {
		return nil, domain.ResponseCodeError(1)
	}
	return out, nil
}

// categoryName resolves a category id to its name; "" means any category.
// Unknown ids are matched as names.
func (s *StaticQuestionSource) categoryName(category string) string {
	if category == "" || category == domain.AnyCategory {
		return ""
	}
	for _, c := range s.categories {
		if strconv.Itoa(c.ID) == category {
			return c.Name
		}
	}
	return category
}

func (s *StaticQuestionSource) Categories(context.Context) ([]domain.Category, error) {
	return append([]domain.Category{}, s.categories...), nil
}

// SampleQuestions is a small built-in pool in the trivia API wire form.
func SampleQuestions() []domain.RawQuestion {
	return []domain.RawQuestion{
		{Category: "Science &amp; Nature", Type: "multiple", Difficulty: domain.DifficultyEasy,
			Question: "What is the chemical symbol for gold?", CorrectAnswer: "Au",
			IncorrectAnswers: []string{"Ag", "Gd", "Go"}},
		{Category: "Geography", Type: "multiple", Difficulty: domain.DifficultyEasy,
			Question: "What is the capital of Australia?", CorrectAnswer: "Canberra",
			IncorrectAnswers: []string{"Sydney", "Melbourne", "Perth"}},
		{Category: "Entertainment: Books", Type: "multiple", Difficulty: domain.DifficultyEasy,
			Question: "Who wrote &quot;Pride and Prejudice&quot;?", CorrectAnswer: "Jane Austen",
			IncorrectAnswers: []string{"Charlotte Bront&euml;", "Mary Shelley", "George Eliot"}},
		{Category: "Science: Computers", Type: "multiple", Difficulty: domain.DifficultyEasy,
			Question: "What does &quot;CPU&quot; stand for?", CorrectAnswer: "Central Processing Unit",
			IncorrectAnswers: []string{"Central Process Unit", "Computer Personal Unit", "Central Processor Unifier"}},
		{Category: "History", Type: "multiple", Difficulty: domain.DifficultyEasy,
			Question: "In which year did World War II end?", CorrectAnswer: "1945",
			IncorrectAnswers: []string{"1944", "1946", "1939"}},
		{Category: "Science &amp; Nature", Type: "multiple", Difficulty: domain.DifficultyMedium,
			Question: "What is the hardest natural substance?", CorrectAnswer: "Diamond",
			IncorrectAnswers: []string{"Quartz", "Topaz", "Corundum"}},
		{Category: "Geography", Type: "multiple", Difficulty: domain.DifficultyMedium,
			Question: "Which river flows through Baghdad?", CorrectAnswer: "Tigris",
			IncorrectAnswers: []string{"Euphrates", "Jordan", "Nile"}},
		{Category: "Science: Mathematics", Type: "multiple", Difficulty: domain.DifficultyMedium,
			Question: "What is the next prime after 13?", CorrectAnswer: "17",
			IncorrectAnswers: []string{"15", "19", "21"}},
		{Category: "History", Type: "multiple", Difficulty: domain.DifficultyHard,
			Question: "Which treaty ended the Thirty Years&#039; War?", CorrectAnswer: "Peace of Westphalia",
			IncorrectAnswers: []string{"Treaty of Utrecht", "Treaty of Versailles", "Peace of Augsburg"}},
		{Category: "Science: Computers", Type: "multiple", Difficulty: domain.DifficultyHard,
			Question: "Which year was the Go programming language announced?", CorrectAnswer: "2009",
			IncorrectAnswers: []string{"2007", "2011", "2012"}},
	}
}

// SampleCategories mirrors a subset of the trivia API category ids.
func SampleCategories() []domain.Category {
	return []domain.Category{
		{ID: 10, Name: "Entertainment: Books"},
		{ID: 17, Name: "Science & Nature"},
		{ID: 18, Name: "Science: Computers"},
		{ID: 19, Name: "Science: Mathematics"},
		{ID: 22, Name: "Geography"},
		{ID: 23, Name: "History"},
	}
}
