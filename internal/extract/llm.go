package extract

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/jeonse-risk/internal/model"
	"github.com/sells-group/jeonse-risk/internal/resilience"
)

// Completer returns a model completion for a system instruction and prompt.
type Completer interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

const llmSystemPrompt = `You read sections of a Korean real-property registry summary (주요 등기사항 요약).
Return ONLY a JSON object, no prose, with this shape:
{"claims":[{"priority":5,"type":"mortgage|lease_deposit_right|tenancy_right","registered_at":"YYYY-MM-DD","amount":240000000,"holder":"..."}],
 "liens":[{"priority":3,"type":"seizure|provisional_seizure|provisional_disposition|auction","registered_at":"YYYY-MM-DD","claimant":"...","amount":5000000}]}
Rules:
- Report current state only. Apply 변경/경정 sub-entries (N-k) to the amount of entry N and 이전 sub-entries to its holder; keep the highest k.
- amount is the 채권최고액 for mortgages, the 전세금 or 임차보증금 for lease rights, and the 청구금액 for liens (omit when absent). Whole won, no separators.
- holder is the creditor or tenant only. Never include the owner name printed in the 대상소유자 column, receipt numbers or ID numbers.
- registered_at is the receipt (접수) date.
- If a section says 기록사항 없음, return empty lists for it. Never guess a value that is not printed.`

type llmClaim struct {
	Priority     int    `json:"priority"`
	Type         string `json:"type"`
	RegisteredAt string `json:"registered_at"`
	Amount       int64  `json:"amount"`
	Holder       string `json:"holder"`
}

type llmLien struct {
	Priority     int    `json:"priority"`
	Type         string `json:"type"`
	RegisteredAt string `json:"registered_at"`
	Claimant     string `json:"claimant"`
	Amount       *int64 `json:"amount"`
}

type llmResponse struct {
	Claims []llmClaim `json:"claims"`
	Liens  []llmLien  `json:"liens"`
}

// LLMExtractor asks a language model for current-state claims and
// validates every record it returns.
type LLMExtractor struct {
	completer Completer
	limiter   *rate.Limiter
	retry     resilience.RetryConfig
	breaker   *resilience.Breaker
}

// LLMOption configures an LLMExtractor.
type LLMOption func(*LLMExtractor)

// WithRateLimit caps completions per second.
func WithRateLimit(perSecond float64, burst int) LLMOption {
	return func(e *LLMExtractor) {
		if perSecond > 0 {
			e.limiter = rate.NewLimiter(rate.Limit(perSecond), max(burst, 1))
		}
	}
}

// WithRetry overrides the retry policy.
func WithRetry(cfg resilience.RetryConfig) LLMOption {
	return func(e *LLMExtractor) { e.retry = cfg }
}

// WithBreaker guards completions with a circuit breaker.
func WithBreaker(b *resilience.Breaker) LLMOption {
	return func(e *LLMExtractor) { e.breaker = b }
}

// NewLLMExtractor creates an LLM backend. A nil completer yields a backend
// that always reports ErrBackendUnavailable.
func NewLLMExtractor(c Completer, opts ...LLMOption) *LLMExtractor {
	e := &LLMExtractor{completer: c, retry: resilience.DefaultRetryConfig()}
	e.retry.OnRetry = resilience.RetryLogger("llm", "extract")
	for _, o := range opts {
		o(e)
	}
	return e
}

// Name implements Extractor.
func (e *LLMExtractor) Name() string { return BackendLLM }

// Extract implements Extractor.
func (e *LLMExtractor) Extract(ctx context.Context, in Input) (*model.Extraction, error) {
	if e == nil || e.completer == nil {
		return nil, ErrBackendUnavailable
	}
	if strings.TrimSpace(in.Secured) == "" && strings.TrimSpace(in.Other) == "" {
		return model.NewExtraction(BackendLLM), nil
	}
	if e.limiter != nil {
		if err := e.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "extract: wait for llm rate limit")
		}
	}

	prompt := buildPrompt(in)
	complete := func(ctx context.Context) (string, error) {
		return resilience.DoVal(ctx, e.retry, func(ctx context.Context) (string, error) {
			return e.completer.Complete(ctx, llmSystemPrompt, prompt)
		})
	}

	var text string
	var err error
	if e.breaker != nil {
		text, err = resilience.Call(ctx, e.breaker, complete)
	} else {
		text, err = complete(ctx)
	}
	if errors.Is(err, resilience.ErrCircuitOpen) {
		return nil, eris.Wrap(ErrBackendUnavailable, "extract: llm circuit open")
	}
	if err != nil {
		return nil, eris.Wrap(err, "extract: llm completion")
	}

	return parseLLMResponse(text)
}

func buildPrompt(in Input) string {
	var sb strings.Builder
	sb.WriteString("[3. (근)저당권 및 전세권 등 (을구)]\n")
	if in.Secured == "" {
		sb.WriteString("기록사항 없음\n")
	} else {
		sb.WriteString(in.Secured)
		sb.WriteString("\n")
	}
	sb.WriteString("\n[2. 소유지분을 제외한 소유권에 관한 사항 (갑구)]\n")
	if in.Other == "" {
		sb.WriteString("기록사항 없음\n")
	} else {
		sb.WriteString(in.Other)
		sb.WriteString("\n")
	}
	if len(in.Owners) > 0 {
		fmt.Fprintf(&sb, "\n[현재 소유자] %s\n", strings.Join(in.Owners, ", "))
	}
	return sb.String()
}

// parseLLMResponse validates the model output. Invalid records are dropped
// and counted as unmatched.
func parseLLMResponse(text string) (*model.Extraction, error) {
	var resp llmResponse
	if err := json.Unmarshal([]byte(cleanJSON(text)), &resp); err != nil {
		return nil, eris.Wrap(err, "extract: parse llm response")
	}

	out := model.NewExtraction(BackendLLM)
	seen := make(map[int]bool)
	for _, c := range resp.Claims {
		rec, ok := c.record()
		if !ok || seen[rec.Priority] {
			out.Unmatched++
			zap.L().Debug("extract: dropped invalid llm claim", zap.Int("priority", c.Priority), zap.String("type", c.Type))
			continue
		}
		seen[rec.Priority] = true
		if rec.Type == model.ClaimMortgage {
			out.Mortgages = append(out.Mortgages, rec)
		} else {
			out.LeaseRights = append(out.LeaseRights, rec)
		}
	}

	seenLien := make(map[int]bool)
	for _, l := range resp.Liens {
		rec, ok := l.record()
		if !ok || seenLien[rec.Priority] {
			out.Unmatched++
			continue
		}
		seenLien[rec.Priority] = true
		out.Liens = append(out.Liens, rec)
	}
	return out, nil
}

func (c llmClaim) record() (model.EncumbranceRecord, bool) {
	kind := model.ClaimType(c.Type)
	switch kind {
	case model.ClaimMortgage, model.ClaimLeaseDepositRight, model.ClaimTenancyRight:
	default:
		return model.EncumbranceRecord{}, false
	}
	date, ok := parseLLMDate(c.RegisteredAt)
	holder := CleanHolder(c.Holder)
	if c.Priority <= 0 || c.Amount <= 0 || !ok || holder == "" {
		return model.EncumbranceRecord{}, false
	}
	return model.EncumbranceRecord{
		Priority:     c.Priority,
		Type:         kind,
		RegisteredAt: date,
		Holder:       holder,
		Status:       model.ClaimActive,
		Variant:      BackendLLM,
	}.WithAmount(c.Amount), true
}

func (l llmLien) record() (model.LienRecord, bool) {
	kind := model.LienType(l.Type)
	if model.LienFlag(kind) == "" || l.Priority <= 0 {
		return model.LienRecord{}, false
	}
	date, ok := parseLLMDate(l.RegisteredAt)
	if !ok {
		return model.LienRecord{}, false
	}
	rec := model.LienRecord{
		Priority:     l.Priority,
		Type:         kind,
		Claimant:     CleanHolder(l.Claimant),
		RegisteredAt: date,
	}
	if l.Amount != nil && *l.Amount > 0 {
		amt := *l.Amount
		rec.Amount = &amt
	}
	return rec, true
}

func parseLLMDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, true
	}
	return ParseDate(s)
}

// cleanJSON strips markdown fences and surrounding prose from a model
// response, leaving the outermost JSON object.
func cleanJSON(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	}
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		text = text[start : end+1]
	}
	return strings.TrimSpace(text)
}
