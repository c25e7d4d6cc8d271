package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ppiankov/macrolens/internal/model"
)

// Processor answers a single natural-language question
type Processor interface {
	Process(ctx context.Context, question string) (*model.Report, error)
}

// QuestionJob answers one question
type QuestionJob struct {
	Question  string
	Processor Processor
}

// Execute executes the question job
func (j *QuestionJob) Execute(ctx context.Context) Result {
	report, err := j.Processor.Process(ctx, j.Question)
	return &QuestionResult{
		Question: j.Question,
		Report:   report,
		Error:    err,
	}
}

// QuestionResult represents the result of a question job
type QuestionResult struct {
	Question string
	Report   *model.Report
	Error    error
}

// GetError returns the error from the question result
func (r *QuestionResult) GetError() error {
	return r.Error
}

// BatchProcessor answers multiple questions concurrently
type BatchProcessor struct {
	processor   Processor
	concurrency int
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(processor Processor, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		processor:   processor,
		concurrency: concurrency,
	}
}

// ProcessQuestions answers the questions concurrently; results follow input order
func (b *BatchProcessor) ProcessQuestions(ctx context.Context, questions []string) []*QuestionResult {
	if len(questions) == 0 {
		return []*QuestionResult{}
	}

	jobs := make([]Job, len(questions))
	for i, q := range questions {
		jobs[i] = &QuestionJob{Question: q, Processor: b.processor}
	}

	results := Run(ctx, b.concurrency, jobs)

	out := make([]*QuestionResult, len(results))
	for i, result := range results {
		out[i] = result.(*QuestionResult)
	}
	return out
}

// ProcessFile reads questions from a file and answers them concurrently
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]*QuestionResult, error) {
	questions, err := ReadQuestionsFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read questions: %w", err)
	}

	return b.ProcessQuestions(ctx, questions), nil
}

// ReadQuestionsFromFile reads questions from a file (one per line).
// Blank lines and lines starting with # are skipped; repeats are dropped.
func ReadQuestionsFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var questions []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if !seen[line] {
			seen[line] = true
			questions = append(questions, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return questions, nil
}
