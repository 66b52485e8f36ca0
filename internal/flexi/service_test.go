package flexi_test

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/saulo-duarte/studio-ops/internal/apperror"
	"github.com/saulo-duarte/studio-ops/internal/auth"
	"github.com/saulo-duarte/studio-ops/internal/capability"
	"github.com/saulo-duarte/studio-ops/internal/dbtest"
	"github.com/saulo-duarte/studio-ops/internal/flexi"
	"github.com/saulo-duarte/studio-ops/internal/mapping"
	"github.com/saulo-duarte/studio-ops/internal/project"
	timeentry "github.com/saulo-duarte/studio-ops/internal/time_entry"
	util "github.com/saulo-duarte/studio-ops/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T, caps capability.Set) (context.Context, flexi.FlexiService, *env) {
	t.Helper()
	db := dbtest.Open(t, &flexi.Credit{}, &mapping.Board{}, &project.Project{}, &timeentry.TimeEntry{})

	e := &env{
		boards:   mapping.NewRepository(db),
		projects: project.NewRepository(db),
		entries:  timeentry.NewRepository(db),
	}
	ctx := auth.WithClaims(context.Background(), &auth.Claims{UserID: uuid.NewString(), Role: auth.RoleAdmin})
	c := flexi.NewFlexiContainer(db, caps, e.boards, e.entries)
	return ctx, c.Service, e
}

type env struct {
	boards   mapping.MappingRepository
	projects project.ProjectRepository
	entries  timeentry.TimeEntryRepository
}

func (e *env) logged(t *testing.T, ctx context.Context, boardID, client string, hours float64) {
	t.Helper()
	p := &project.Project{ExternalItemID: uuid.NewString(), BoardID: boardID, Name: client + " job", ClientName: client, Status: project.StatusActive}
	require.NoError(t, e.projects.Create(ctx, p))
	require.NoError(t, e.entries.Create(ctx, &timeentry.TimeEntry{
		UserID:    uuid.New(),
		TaskID:    uuid.New(),
		ProjectID: p.ID,
		Date:      util.MustParseDate("2024-03-04"),
		Hours:     hours,
	}))
}

func TestAddCredit_Validation(t *testing.T) {
	ctx, svc, _ := setup(t, capability.All())

	tests := []struct {
		name string
		dto  flexi.CreateCreditDTO
	}{
		{name: "missing client", dto: flexi.CreateCreditDTO{Hours: 10}},
		{name: "zero hours", dto: flexi.CreateCreditDTO{ClientName: "Acme"}},
		{name: "negative hours", dto: flexi.CreateCreditDTO{ClientName: "Acme", Hours: -2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.AddCredit(ctx, tt.dto)
			assert.Equal(t, apperror.KindInvalid, apperror.KindOf(err))
		})
	}
}

func TestAddCredit_RecordsCreator(t *testing.T) {
	ctx, svc, _ := setup(t, capability.All())
	day := util.MustParseDate("2024-01-15")

	c, err := svc.AddCredit(ctx, flexi.CreateCreditDTO{ClientName: "  Acme ", Hours: 20, PurchasedOn: &day})
	require.NoError(t, err)
	assert.Equal(t, "Acme", c.ClientName)
	assert.True(t, c.PurchasedOn.Equal(day))
	assert.NotNil(t, c.CreatedBy)
}

func TestBalances(t *testing.T) {
	ctx, svc, e := setup(t, capability.All())
	require.NoError(t, e.boards.UpsertBoard(ctx, &mapping.Board{BoardID: "flexi-1", Name: "Flexi", Kind: mapping.BoardFlexi}))
	require.NoError(t, e.boards.UpsertBoard(ctx, &mapping.Board{BoardID: "main-1", Name: "Main", Kind: mapping.BoardMain}))

	_, err := svc.AddCredit(ctx, flexi.CreateCreditDTO{ClientName: "Acme", Hours: 20})
	require.NoError(t, err)
	_, err = svc.AddCredit(ctx, flexi.CreateCreditDTO{ClientName: "acme", Hours: 10})
	require.NoError(t, err)

	e.logged(t, ctx, "flexi-1", "Acme", 7.5)
	e.logged(t, ctx, "main-1", "Acme", 40)
	e.logged(t, ctx, "flexi-1", "Globex", 3)

	balances, err := svc.Balances(ctx)
	require.NoError(t, err)
	require.Len(t, balances, 2)

	assert.True(t, strings.EqualFold("Acme", balances[0].ClientName))
	assert.InDelta(t, 30.0, balances[0].Purchased, 0.001)
	assert.InDelta(t, 7.5, balances[0].Used, 0.001)
	assert.InDelta(t, 22.5, balances[0].Remaining, 0.001)

	assert.Equal(t, "Globex", balances[1].ClientName)
	assert.InDelta(t, -3.0, balances[1].Remaining, 0.001)
}

func TestDeleteCredit(t *testing.T) {
	ctx, svc, _ := setup(t, capability.All())

	err := svc.DeleteCredit(ctx, uuid.New())
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))

	c, err := svc.AddCredit(ctx, flexi.CreateCreditDTO{ClientName: "Acme", Hours: 5})
	require.NoError(t, err)
	require.NoError(t, svc.DeleteCredit(ctx, c.ID))

	credits, err := svc.ListCredits(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, credits)
}

func TestFlexi_NotConfigured(t *testing.T) {
	caps := capability.All()
	caps.Flexi = false
	ctx, svc, _ := setup(t, caps)

	_, err := svc.Balances(ctx)
	assert.Equal(t, apperror.KindNotConfigured, apperror.KindOf(err))
}
