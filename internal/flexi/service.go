package flexi

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/saulo-duarte/studio-ops/internal/amount"
	"github.com/saulo-duarte/studio-ops/internal/apperror"
	"github.com/saulo-duarte/studio-ops/internal/auth"
	"github.com/saulo-duarte/studio-ops/internal/capability"
	"github.com/saulo-duarte/studio-ops/internal/config"
	"github.com/saulo-duarte/studio-ops/internal/mapping"
	util "github.com/saulo-duarte/studio-ops/internal/utils"
	"github.com/sirupsen/logrus"
)

type BoardLister interface {
	ListBoards(ctx context.Context) ([]mapping.Board, error)
}

type HoursByClient interface {
	SumHoursByClient(ctx context.Context, boardIDs []string) (map[string]float64, error)
}

type FlexiService interface {
	ListCredits(ctx context.Context, clientName string) ([]Credit, error)
	AddCredit(ctx context.Context, dto CreateCreditDTO) (*Credit, error)
	DeleteCredit(ctx context.Context, id uuid.UUID) error
	Balances(ctx context.Context) ([]Balance, error)
}

type flexiService struct {
	repo   CreditRepository
	boards BoardLister
	hours  HoursByClient
	caps   capability.Set
}

func NewService(repo CreditRepository, boards BoardLister, hours HoursByClient, caps capability.Set) FlexiService {
	return &flexiService{repo: repo, boards: boards, hours: hours, caps: caps}
}

func (s *flexiService) require() error {
	return capability.Require(s.caps.Flexi, capability.StepFlexi)
}

func (s *flexiService) ListCredits(ctx context.Context, clientName string) ([]Credit, error) {
	if err := s.require(); err != nil {
		return nil, err
	}
	return s.repo.List(ctx, strings.TrimSpace(clientName))
}

func (s *flexiService) AddCredit(ctx context.Context, dto CreateCreditDTO) (*Credit, error) {
	log := config.WithContext(ctx)

	if err := s.require(); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(dto.ClientName)
	if name == "" {
		return nil, apperror.Invalid("client_name is required")
	}
	if dto.Hours <= 0 {
		return nil, apperror.Invalid("hours must be greater than zero")
	}

	c := &Credit{
		ClientName:  name,
		Hours:       amount.Round2(dto.Hours),
		PurchasedOn: util.DateOf(time.Now()),
		Notes:       strings.TrimSpace(dto.Notes),
	}
	if dto.PurchasedOn != nil && !dto.PurchasedOn.IsZero() {
		c.PurchasedOn = *dto.PurchasedOn
	}
	if claims, err := auth.GetUserClaimsFromContext(ctx); err == nil {
		if id, err := uuid.Parse(claims.UserID); err == nil {
			c.CreatedBy = &id
		}
	}

	if err := s.repo.Create(ctx, c); err != nil {
		log.WithError(err).Error("Failed to create flexi credit")
		return nil, err
	}
	log.WithFields(logrus.Fields{
		"credit_id": c.ID,
		"client":    c.ClientName,
		"hours":     c.Hours,
	}).Info("Flexi credit added")
	return c, nil
}

func (s *flexiService) DeleteCredit(ctx context.Context, id uuid.UUID) error {
	if err := s.require(); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return apperror.Wrap(apperror.KindNotFound, "flexi credit not found", err)
		}
		config.WithContext(ctx).WithError(err).Error("Failed to delete flexi credit")
		return err
	}
	return nil
}

// Balances reports purchased minus used hours for every client that either
// bought credits or logged time on a flexi board project.
func (s *flexiService) Balances(ctx context.Context) ([]Balance, error) {
	log := config.WithContext(ctx)

	if err := s.require(); err != nil {
		return nil, err
	}

	credits, err := s.repo.List(ctx, "")
	if err != nil {
		log.WithError(err).Error("Failed to list flexi credits")
		return nil, err
	}

	var used map[string]float64
	if s.caps.ProjectSync && s.caps.TimeTracking {
		boards, err := s.boards.ListBoards(ctx)
		if err != nil {
			log.WithError(err).Error("Failed to list boards")
			return nil, err
		}
		var flexiBoards []string
		for _, b := range boards {
			if b.Kind == mapping.BoardFlexi {
				flexiBoards = append(flexiBoards, b.BoardID)
			}
		}
		used, err = s.hours.SumHoursByClient(ctx, flexiBoards)
		if err != nil {
			log.WithError(err).Error("Failed to sum flexi hours")
			return nil, err
		}
	}

	byClient := make(map[string]*Balance)
	get := func(name string) *Balance {
		key := strings.ToLower(strings.TrimSpace(name))
		b, ok := byClient[key]
		if !ok {
			b = &Balance{ClientName: strings.TrimSpace(name)}
			byClient[key] = b
		}
		return b
	}

	for _, c := range credits {
		b := get(c.ClientName)
		b.Purchased += c.Hours
		if b.LastBought == nil || c.PurchasedOn.After(*b.LastBought) {
			d := c.PurchasedOn
			b.LastBought = &d
		}
	}
	for client, hours := range used {
		if strings.TrimSpace(client) == "" {
			continue
		}
		get(client).Used += hours
	}

	out := make([]Balance, 0, len(byClient))
	for _, b := range byClient {
		b.Purchased = amount.Round2(b.Purchased)
		b.Used = amount.Round2(b.Used)
		b.Remaining = amount.Round2(b.Purchased - b.Used)
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ClientName < out[j].ClientName })
	return out, nil
}
