package service

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/theIndrajeet/AskSarkar/internal/adapter/llm"
	"github.com/theIndrajeet/AskSarkar/internal/domain"
	"github.com/theIndrajeet/AskSarkar/internal/policy"
)

// TurnResult is the outcome of one user message.
type TurnResult struct {
	SessionID string                 `json:"session_id"`
	Reply     domain.GenerationReply `json:"reply"`
	Stage     domain.Stage           `json:"stage"`
	Document  string                 `json:"document,omitempty"`
	Usage     *domain.UsageMessage   `json:"usage,omitempty"`
}

// ProcessMessage runs one conversation turn: capture fields from the
// message, check quota and policy, generate a reply and advance the stage.
func (s *Service) ProcessMessage(ctx context.Context, sessionID, text string, voice bool) (*TurnResult, error) {
	live, err := s.acquire(sessionID)
	if err != nil {
		return nil, err
	}
	defer s.release(live)

	conv := live.conv
	remote := s.generator.Remote()

	decision, reason, err := s.admit(ctx, sessionID, text, conv.Stage(), remote)
	if err != nil {
		return nil, err
	}
	if decision == policy.DecisionBlock {
		s.trace(ctx, sessionID, domain.EventTypeGenerationBlocked, map[string]interface{}{"reason": reason})
		return nil, fmt.Errorf("%w: %s", ErrPolicyBlocked, reason)
	}

	priorMessages := len(conv.Session().Messages)
	conv.ExtractAndStoreInfo(ctx, text, domain.RoleUser)
	conv.AppendMessage(domain.RoleUser, text, voice)
	msgID := s.saveMessage(ctx, sessionID, domain.RoleUser, text, map[string]interface{}{"voice": voice})
	s.trace(ctx, sessionID, domain.EventTypeUserInput, map[string]interface{}{
		"message_id": msgID,
		"content":    text,
	})
	s.persistState(ctx, conv)

	// Offline generation does not draw on the quota.
	if remote {
		if decision == policy.DecisionManualFallback || !s.limiter.CanMakeRequest(ctx) || !s.limiter.RecordRequest(ctx) {
			s.trace(ctx, sessionID, domain.EventTypeGenerationBlocked, map[string]interface{}{"reason": "daily_quota_exhausted"})
			return nil, newQuotaError(s.limiter.UsageMessage(ctx))
		}
	}

	snapshot := conv.Snapshot(ctx)
	req := &llm.GenerationRequest{
		Model:         s.model(),
		SystemPrompt:  systemPrompt,
		Prompt:        buildPrompt(snapshot, text),
		Info:          snapshot.Session.ExtractedInfo,
		PriorMessages: priorMessages,
	}

	gen, err := s.generate(ctx, sessionID, req)
	if err != nil {
		if errors.Is(err, llm.ErrProviderQuota) {
			return nil, newQuotaError(s.limiter.UsageMessage(ctx))
		}
		return nil, fmt.Errorf("generation failed: %w", err)
	}

	reply := parseReply(gen.Text)
	previous := conv.Stage()
	stage := previous
	// A plain-text reply carries no stage, so the session stays where it was.
	if reply.Structured {
		stage = conv.InferredStage()
		if reply.Stage == domain.StageRTIReady && reply.Document() != "" {
			stage = domain.StageRTIReady
		}
		conv.UpdateStage(stage)
	}
	if reply.Stage == "" {
		reply.Stage = stage
	}
	if stage != previous {
		s.trace(ctx, sessionID, domain.EventTypeStageChanged, map[string]interface{}{
			"from":        previous,
			"to":          stage,
			"reply_stage": reply.Stage,
		})
	}

	conv.AppendMessage(domain.RoleAssistant, reply.Message, false)
	s.saveMessage(ctx, sessionID, domain.RoleAssistant, reply.Message, map[string]interface{}{
		"next_question": reply.NextQuestion,
		"structured":    reply.Structured,
	})
	s.persistState(ctx, conv)

	result := &TurnResult{
		SessionID: sessionID,
		Reply:     reply,
		Stage:     stage,
		Document:  reply.Document(),
	}
	if result.Document != "" {
		s.mu.Lock()
		live.document = result.Document
		s.mu.Unlock()
	}
	if remote {
		result.Usage = s.limiter.UsageMessage(ctx)
	}
	return result, nil
}

// admit evaluates the admission policy for a message.
func (s *Service) admit(ctx context.Context, sessionID, text string, stage domain.Stage, remote bool) (string, string, error) {
	usage := policy.Usage{Limit: s.limiter.Limit(), Remaining: s.limiter.Limit()}
	if remote {
		info := s.limiter.UsageInfo(ctx)
		usage = policy.Usage{Used: info.Used, Limit: info.Limit, Remaining: info.Remaining}
	}

	decision, reason, err := s.policyEngine.Evaluate(ctx, policy.Input{
		MessageLength: utf8.RuneCountInString(text),
		Stage:         string(stage),
		Usage:         usage,
	})
	if err != nil {
		return "", "", fmt.Errorf("policy evaluation failed: %w", err)
	}
	s.trace(ctx, sessionID, domain.EventTypePolicyDecision, map[string]interface{}{
		"decision": decision,
		"reason":   reason,
	})
	return decision, reason, nil
}

// generate calls the backend and records the call's trace events.
func (s *Service) generate(ctx context.Context, sessionID string, req *llm.GenerationRequest) (*llm.Generation, error) {
	requestID := "gen_" + uuid.New().String()[:8]
	startTime := time.Now()

	s.trace(ctx, sessionID, domain.EventTypeGenerationStarted, map[string]interface{}{
		"request_id": requestID,
		"generator":  s.generator.Name(),
		"model":      req.Model,
	})

	if s.config != nil && s.config.LLMTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.LLMTimeout)
		defer cancel()
	}

	gen, err := s.generator.Generate(ctx, req)
	latencyMs := time.Since(startTime).Milliseconds()
	if err != nil {
		s.trace(context.WithoutCancel(ctx), sessionID, domain.EventTypeGenerationFailed, map[string]interface{}{
			"request_id": requestID,
			"latency_ms": latencyMs,
			"error":      err.Error(),
		})
		log.Warn("Generation failed", "session_id", sessionID, "generator", s.generator.Name(), "err", err)
		return nil, err
	}

	s.trace(ctx, sessionID, domain.EventTypeGenerationDone, map[string]interface{}{
		"request_id":    requestID,
		"model":         gen.Model,
		"latency_ms":    latencyMs,
		"prompt_tokens": gen.PromptTokens,
		"output_tokens": gen.OutputTokens,
	})
	return gen, nil
}

func (s *Service) model() string {
	if s.config == nil {
		return ""
	}
	return s.config.LLMModel
}
