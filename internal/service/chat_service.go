package service

import (
	"context"
	"strings"

	"civic-grant-be/internal/constant"
	"civic-grant-be/internal/dto"
	"civic-grant-be/internal/entity"
	"civic-grant-be/internal/pkg/logger"
	"civic-grant-be/internal/pkg/serverutils"
	"civic-grant-be/internal/repository/specification"
	"civic-grant-be/internal/repository/unitofwork"
	"civic-grant-be/pkg/events"
	"civic-grant-be/pkg/profile"
	"civic-grant-be/pkg/store"
	"civic-grant-be/pkg/workflow"

	"github.com/google/uuid"
)

const defaultSessionTitle = "New Grant Session"

type IChatService interface {
	CreateSession(ctx context.Context) (*dto.CreateSessionResponse, error)
	GetAllSessions(ctx context.Context) ([]*dto.GetAllSessionsResponse, error)
	GetChatHistory(ctx context.Context, sessionId uuid.UUID) ([]*dto.GetChatHistoryResponse, error)
	SendChat(ctx context.Context, req *dto.SendChatRequest) (*dto.SendChatResponse, error)
	SelectGrant(ctx context.Context, req *dto.SelectGrantRequest) (*dto.SendChatResponse, error)
	GetGrants(ctx context.Context, sessionId uuid.UUID) (*dto.GetGrantsResponse, error)
	GetProfile(ctx context.Context, sessionId uuid.UUID) (*dto.GetProfileResponse, error)
	GetDrafts(ctx context.Context, sessionId uuid.UUID) ([]*dto.DraftResponse, error)
	DeleteSession(ctx context.Context, sessionId uuid.UUID) error
}

type chatService struct {
	uowFactory   unitofwork.RepositoryFactory
	orchestrator *workflow.Orchestrator
	sessions     store.SessionStore
	logger       logger.ILogger
}

func NewChatService(
	uowFactory unitofwork.RepositoryFactory,
	orchestrator *workflow.Orchestrator,
	sessions store.SessionStore,
	log logger.ILogger,
) IChatService {
	return &chatService{
		uowFactory:   uowFactory,
		orchestrator: orchestrator,
		sessions:     sessions,
		logger:       log,
	}
}

func (s *chatService) CreateSession(ctx context.Context) (*dto.CreateSessionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session := &entity.ChatSession{
		Title: defaultSessionTitle,
		Stage: store.StageProfileBuilding,
	}
	if err := uow.ChatSessionRepository().Create(ctx, session); err != nil {
		return nil, err
	}

	if err := s.sessions.Save(ctx, store.NewSession(session.Id.String())); err != nil {
		return nil, err
	}

	return &dto.CreateSessionResponse{
		Id:    session.Id,
		Stage: session.Stage,
	}, nil
}

func (s *chatService) GetAllSessions(ctx context.Context) ([]*dto.GetAllSessionsResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	sessions, err := uow.ChatSessionRepository().FindAll(ctx, specification.OrderBy{Field: "created_at", Desc: true})
	if err != nil {
		return nil, err
	}

	res := make([]*dto.GetAllSessionsResponse, 0, len(sessions))
	for _, session := range sessions {
		res = append(res, &dto.GetAllSessionsResponse{
			Id:        session.Id,
			Title:     session.Title,
			Stage:     session.Stage,
			CreatedAt: session.CreatedAt,
			UpdatedAt: session.UpdatedAt,
		})
	}
	return res, nil
}

func (s *chatService) GetChatHistory(ctx context.Context, sessionId uuid.UUID) ([]*dto.GetChatHistoryResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	messages, err := uow.ChatMessageRepository().FindAll(ctx,
		specification.ByChatSessionId{ChatSessionId: sessionId},
		specification.OrderBy{Field: "created_at", Desc: false},
	)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.GetChatHistoryResponse, 0, len(messages))
	for _, msg := range messages {
		res = append(res, &dto.GetChatHistoryResponse{
			Id:        msg.Id,
			Role:      msg.Role,
			Chat:      msg.Chat,
			Stage:     msg.Stage,
			CreatedAt: msg.CreatedAt,
		})
	}
	return res, nil
}

func (s *chatService) SendChat(ctx context.Context, req *dto.SendChatRequest) (*dto.SendChatResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session, err := uow.ChatSessionRepository().FindOne(ctx, specification.ByID{ID: req.ChatSessionId})
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, serverutils.NewHttpError(404, "chat session not found")
	}

	sent := &entity.ChatMessage{
		ChatSessionId: session.Id,
		Role:          constant.ChatMessageRoleUser,
		Chat:          req.Chat,
		Stage:         session.Stage,
	}
	if err := uow.ChatMessageRepository().Create(ctx, sent); err != nil {
		return nil, err
	}

	stream := s.orchestrator.HandleTurn(ctx, session.Id.String(), req.Chat)
	turnEvents, reply := collectTurn(stream)
	if err := stream.Err(); err != nil {
		return nil, err
	}

	return s.finishTurn(ctx, uow, session, sent, turnEvents, reply, req.Chat)
}

func (s *chatService) SelectGrant(ctx context.Context, req *dto.SelectGrantRequest) (*dto.SendChatResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session, err := uow.ChatSessionRepository().FindOne(ctx, specification.ByID{ID: req.ChatSessionId})
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, serverutils.NewHttpError(404, "chat session not found")
	}

	stream, err := s.orchestrator.SelectGrant(ctx, session.Id.String(), req.GrantName)
	if err != nil {
		return nil, serverutils.NewHttpError(400, err.Error())
	}
	turnEvents, reply := collectTurn(stream)
	if err := stream.Err(); err != nil {
		return nil, err
	}

	// Persist the generated draft alongside the chat history.
	if wf, found, err := s.sessions.Get(ctx, session.Id.String()); err == nil && found && wf.Draft != "" {
		draft := &entity.GrantDraft{
			ChatSessionId: session.Id,
			GrantName:     wf.DraftGrantName,
			Grant:         wf.Selected,
			Profile:       wf.Profile,
			Content:       wf.Draft,
		}
		if err := uow.GrantDraftRepository().Create(ctx, draft); err != nil {
			s.logger.Error("chat_service", "failed to persist grant draft", map[string]interface{}{
				"session_id": session.Id.String(),
				"error":      err.Error(),
			})
		}
	}

	return s.finishTurn(ctx, uow, session, nil, turnEvents, reply, "")
}

// finishTurn persists the assistant reply, refreshes the session row, and
// assembles the response from the workflow state.
func (s *chatService) finishTurn(
	ctx context.Context,
	uow unitofwork.UnitOfWork,
	session *entity.ChatSession,
	sent *entity.ChatMessage,
	turnEvents []events.Event,
	reply string,
	userMessage string,
) (*dto.SendChatResponse, error) {
	wf, found, err := s.sessions.Get(ctx, session.Id.String())
	if err != nil {
		return nil, err
	}
	if !found {
		wf = store.NewSession(session.Id.String())
	}

	var replyChat *entity.ChatMessage
	if reply != "" {
		replyChat = &entity.ChatMessage{
			ChatSessionId: session.Id,
			Role:          constant.ChatMessageRoleModel,
			Chat:          reply,
			Stage:         wf.Stage,
		}
		if err := uow.ChatMessageRepository().Create(ctx, replyChat); err != nil {
			return nil, err
		}
	}

	session.Stage = wf.Stage
	if session.Title == defaultSessionTitle && userMessage != "" {
		session.Title = truncateTitle(userMessage)
	}
	if err := uow.ChatSessionRepository().Update(ctx, session); err != nil {
		return nil, err
	}

	res := &dto.SendChatResponse{
		ChatSessionId:   session.Id,
		Title:           session.Title,
		Stage:           wf.Stage,
		ProfileComplete: wf.ProfileComplete,
		Events:          turnEvents,
		Grants:          wf.Opportunities,
	}
	if sent != nil {
		res.Sent = &dto.SendChatResponseChat{
			Id:        sent.Id,
			Chat:      sent.Chat,
			Role:      sent.Role,
			CreatedAt: sent.CreatedAt,
		}
	}
	if replyChat != nil {
		res.Reply = &dto.SendChatResponseChat{
			Id:        replyChat.Id,
			Chat:      replyChat.Chat,
			Role:      replyChat.Role,
			CreatedAt: replyChat.CreatedAt,
		}
	}
	return res, nil
}

func (s *chatService) GetGrants(ctx context.Context, sessionId uuid.UUID) (*dto.GetGrantsResponse, error) {
	wf, found, err := s.sessions.Get(ctx, sessionId.String())
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, serverutils.NewHttpError(404, "session not found")
	}
	return &dto.GetGrantsResponse{
		ChatSessionId: sessionId,
		Grants:        wf.Opportunities,
	}, nil
}

func (s *chatService) GetProfile(ctx context.Context, sessionId uuid.UUID) (*dto.GetProfileResponse, error) {
	wf, found, err := s.sessions.Get(ctx, sessionId.String())
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, serverutils.NewHttpError(404, "session not found")
	}
	return &dto.GetProfileResponse{
		ChatSessionId:   sessionId,
		Profile:         wf.Profile,
		ProfileComplete: wf.ProfileComplete,
		FullyDetailed:   profile.StrictRequirements.IsComplete(wf.Profile),
	}, nil
}

func (s *chatService) GetDrafts(ctx context.Context, sessionId uuid.UUID) ([]*dto.DraftResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	drafts, err := uow.GrantDraftRepository().FindAll(ctx,
		specification.ByChatSessionId{ChatSessionId: sessionId},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.DraftResponse, 0, len(drafts))
	for _, draft := range drafts {
		res = append(res, &dto.DraftResponse{
			Id:        draft.Id,
			GrantName: draft.GrantName,
			Grant:     draft.Grant,
			Content:   draft.Content,
			CreatedAt: draft.CreatedAt,
		})
	}
	return res, nil
}

func (s *chatService) DeleteSession(ctx context.Context, sessionId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	if err := uow.ChatMessageRepository().DeleteAllBySessionId(ctx, sessionId); err != nil {
		return err
	}
	if err := uow.ChatSessionRepository().Delete(ctx, sessionId); err != nil {
		return err
	}
	return s.sessions.Delete(ctx, sessionId.String())
}

// collectTurn drains a turn stream, returning all events plus the user-facing
// reply assembled from the content events.
func collectTurn(stream *events.Stream) ([]events.Event, string) {
	var all []events.Event
	var parts []string
	for e := range stream.Events() {
		all = append(all, e)
		if e.Kind == events.KindContent {
			parts = append(parts, e.Text)
		}
	}
	return all, strings.Join(parts, "\n\n")
}

func truncateTitle(message string) string {
	title := strings.TrimSpace(message)
	if len(title) > 60 {
		title = title[:57] + "..."
	}
	if title == "" {
		return defaultSessionTitle
	}
	return title
}
