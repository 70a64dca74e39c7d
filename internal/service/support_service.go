package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/egannguyen/go-bookstore-backend/internal/entity"
	"github.com/egannguyen/go-bookstore-backend/internal/mailer"
	"github.com/egannguyen/go-bookstore-backend/internal/repository"
	"github.com/google/uuid"
)

// SupportService handles support tickets. Admin replies are emailed to the
// requester; the order workflow itself never sends mail.
type SupportService struct {
	tickets repository.SupportRepository
	mail    mailer.Mailer
}

func NewSupportService(tickets repository.SupportRepository, mail mailer.Mailer) *SupportService {
	return &SupportService{tickets: tickets, mail: mail}
}

// CreateSupportRequest is the public ticket form.
type CreateSupportRequest struct {
	MainIssue   string   `json:"main_issue"`
	DetailIssue string   `json:"detail_issue"`
	Email       string   `json:"email"`
	Phone       string   `json:"phone"`
	OrderNumber string   `json:"order_number"`
	Subject     string   `json:"subject"`
	Description string   `json:"description"`
	FileList    []string `json:"file_list"`
}

func (s *SupportService) Create(ctx context.Context, req *CreateSupportRequest) (*entity.SupportRequest, error) {
	if req.MainIssue == "" || req.Email == "" || req.Subject == "" || req.Description == "" {
		return nil, fmt.Errorf("main issue, email, subject and description are required")
	}

	now := time.Now()
	ticket := &entity.SupportRequest{
		ID:          uuid.New().String(),
		MainIssue:   req.MainIssue,
		DetailIssue: req.DetailIssue,
		Email:       req.Email,
		Phone:       req.Phone,
		OrderNumber: req.OrderNumber,
		Subject:     req.Subject,
		Description: req.Description,
		FileList:    req.FileList,
		Status:      entity.SupportStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if ticket.FileList == nil {
		ticket.FileList = []string{}
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, err
	}
	return ticket, nil
}

func (s *SupportService) FindByID(ctx context.Context, id string) (*entity.SupportRequest, error) {
	return s.tickets.FindByID(ctx, id)
}

func (s *SupportService) FindAll(ctx context.Context, offset, limit int) ([]entity.SupportRequest, int, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.tickets.FindAll(ctx, offset, limit)
}

// Reply stores the admin answer, flips the ticket to answered and mails the
// requester. A mail failure does not undo the reply.
func (s *SupportService) Reply(ctx context.Context, id, reply string, images []string) (*entity.SupportRequest, error) {
	if reply == "" {
		return nil, fmt.Errorf("reply text is required")
	}
	if images == nil {
		images = []string{}
	}
	if err := s.tickets.Reply(ctx, id, reply, images); err != nil {
		return nil, err
	}

	ticket, err := s.tickets.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	body := fmt.Sprintf("<p>Hello,</p><p>Regarding your request %q:</p><p>%s</p>", ticket.Subject, reply)
	if err := s.mail.Send(ticket.Email, "Re: "+ticket.Subject, body); err != nil {
		slog.Error("Failed to email support reply", "ticket_id", id, "err", err)
	}
	return ticket, nil
}
