// Package parser turns URLs, pasted text and photos into structured
// recipes via an LLM. Progress is reported through explicit discrete
// stage callbacks so callers can stream them without sniffing partial
// JSON.
package parser

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"text/template"
	"time"

	"github.com/PuerkitoBio/goquery"

	"chefboard/internal/llm"
	"chefboard/internal/recipe"
)

//go:embed parse_prompt.md
var parsePrompt string

//go:embed infer_prompt.md
var inferPrompt string

// Stage is a discrete progress step of a capture.
type Stage string

const (
	StageFetching   Stage = "fetching"
	StageExtracting Stage = "extracting"
	StageDone       Stage = "done"
)

// ProgressFunc receives stage events while a capture runs. May be nil.
type ProgressFunc func(Stage)

// Parser captures recipes from external sources. Only one capture is
// in flight at a time: starting a new one aborts the previous.
type Parser struct {
	textGen    llm.TextGenerator
	visionGen  llm.VisionGenerator
	httpClient *http.Client

	mu     sync.Mutex
	cancel context.CancelFunc
}

// New creates a Parser. visionGen may be nil, disabling photo capture.
func New(textGen llm.TextGenerator, visionGen llm.VisionGenerator) *Parser {
	return &Parser{
		textGen:   textGen,
		visionGen: visionGen,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// begin registers a capture, aborting any capture already in flight.
func (p *Parser) begin(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)
	p.mu.Lock()
	if p.cancel != nil {
		p.cancel()
	}
	p.cancel = cancel
	p.mu.Unlock()
	return ctx, cancel
}

// ParseURL fetches a page, strips markup noise and extracts a recipe.
func (p *Parser) ParseURL(ctx context.Context, url string, progress ProgressFunc) (*recipe.Recipe, error) {
	if strings.TrimSpace(url) == "" {
		return nil, fmt.Errorf("url is required")
	}
	ctx, cancel := p.begin(ctx)
	defer cancel()

	report(progress, StageFetching)
	content, err := p.fetchAndCleanHTML(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch content: %w", err)
	}

	rec, err := p.extract(ctx, parsePrompt, content, progress)
	if err != nil {
		return nil, err
	}
	rec.SourceURL = url
	rec.CreationMethod = recipe.CreationAIParse
	finish(rec, progress)
	return rec, nil
}

// ParseText extracts a recipe from pasted text.
func (p *Parser) ParseText(ctx context.Context, text string, progress ProgressFunc) (*recipe.Recipe, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("text is required")
	}
	ctx, cancel := p.begin(ctx)
	defer cancel()

	rec, err := p.extract(ctx, parsePrompt, text, progress)
	if err != nil {
		return nil, err
	}
	rec.CreationMethod = recipe.CreationAIParse
	finish(rec, progress)
	return rec, nil
}

// ParseImage extracts a recipe from a photo.
func (p *Parser) ParseImage(ctx context.Context, mimeType string, image []byte, progress ProgressFunc) (*recipe.Recipe, error) {
	if p.visionGen == nil {
		return nil, fmt.Errorf("image capture is not configured")
	}
	if len(image) == 0 {
		return nil, fmt.Errorf("image is required")
	}
	ctx, cancel := p.begin(ctx)
	defer cancel()

	report(progress, StageExtracting)
	prompt, err := buildPrompt(parsePrompt, "The recipe is in the attached photo.")
	if err != nil {
		return nil, err
	}
	raw, err := p.visionGen.GenerateFromImage(ctx, prompt, mimeType, image)
	if err != nil {
		return nil, fmt.Errorf("ai extraction failed: %w", err)
	}
	rec, err := decodeRecipe(raw)
	if err != nil {
		return nil, err
	}
	rec.CreationMethod = recipe.CreationAIParse
	finish(rec, progress)
	return rec, nil
}

// Infer invents a full recipe from a free-text dish description.
func (p *Parser) Infer(ctx context.Context, description string, progress ProgressFunc) (*recipe.Recipe, error) {
	if strings.TrimSpace(description) == "" {
		return nil, fmt.Errorf("description is required")
	}
	ctx, cancel := p.begin(ctx)
	defer cancel()

	rec, err := p.extract(ctx, inferPrompt, description, progress)
	if err != nil {
		return nil, err
	}
	rec.CreationMethod = recipe.CreationAIInfer
	finish(rec, progress)
	return rec, nil
}

func (p *Parser) extract(ctx context.Context, promptTmpl, content string, progress ProgressFunc) (*recipe.Recipe, error) {
	report(progress, StageExtracting)

	prompt, err := buildPrompt(promptTmpl, content)
	if err != nil {
		return nil, err
	}

	raw, err := p.textGen.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("ai extraction failed: %w", err)
	}
	return decodeRecipe(raw)
}

func decodeRecipe(raw string) (*recipe.Recipe, error) {
	var rec recipe.Recipe
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &rec); err != nil {
		return nil, fmt.Errorf("failed to parse AI response: %w. Response: %s", err, raw)
	}
	if strings.TrimSpace(rec.Title) == "" {
		return nil, fmt.Errorf("AI response has no recipe title")
	}
	return &rec, nil
}

func finish(rec *recipe.Recipe, progress ProgressFunc) {
	rec.Touch(time.Now())
	report(progress, StageDone)
}

func report(progress ProgressFunc, stage Stage) {
	if progress != nil {
		progress(stage)
	}
}

func buildPrompt(promptTmpl, content string) (string, error) {
	tmpl, err := template.New("capture").Parse(promptTmpl)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, struct{ Content string }{Content: content}); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// stripCodeFence removes a markdown code fence the model sometimes
// wraps its JSON in despite instructions.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// fetchAndCleanHTML downloads the page and strips the markup that only
// wastes model tokens.
func (p *Parser) fetchAndCleanHTML(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return "", err
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to fetch URL: status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", err
	}

	doc.Find("script, style, nav, footer, iframe, ads, .ads, #ads").Each(func(i int, s *goquery.Selection) {
		s.Remove()
	})

	return doc.Find("body").Text(), nil
}
