package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/halcyonstudio/portal/internal/portal/domain"
	"github.com/halcyonstudio/portal/internal/portal/service"
	"github.com/halcyonstudio/portal/internal/portal/store"
	"github.com/halcyonstudio/portal/internal/portal/store/drivers/sqlite"
	"github.com/halcyonstudio/portal/pkg/codes"
	"github.com/halcyonstudio/portal/pkg/idx"
	"github.com/stretchr/testify/require"
)

func postValidate(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/v1/access/validate", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestAccessValidateHandler(t *testing.T) {
	env := newTestEnv(t)
	handler := &AccessValidateHandler{AccessService: env.access}

	t.Run("valid code resolves its resource", func(t *testing.T) {
		created := env.createProposal(t)

		rec := postValidate(t, handler, `{"code":"`+created.Code.Code+`"}`)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp ValidateCodeResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.True(t, resp.Success)
		require.Equal(t, "proposal", resp.Type)
		require.Equal(t, created.Proposal.ID.String(), resp.ID)
	})

	t.Run("invoice code reports the invoice kind", func(t *testing.T) {
		created := env.createInvoice(t)

		rec := postValidate(t, handler, `{"code":"`+created.Code.Code+`"}`)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp ValidateCodeResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Equal(t, "invoice", resp.Type)
		require.Equal(t, created.Invoice.ID.String(), resp.ID)
	})

	t.Run("empty code is a 400", func(t *testing.T) {
		rec := postValidate(t, handler, `{"code":""}`)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("malformed json is a 400", func(t *testing.T) {
		rec := postValidate(t, handler, `{"code":`)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown code is a 401", func(t *testing.T) {
		rec := postValidate(t, handler, `{"code":"zzzzzzzz"}`)
		require.Equal(t, http.StatusUnauthorized, rec.Code)

		var resp ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Equal(t, "invalid_code", resp.Error)
	})

	t.Run("expired code is a 410 and then unknown", func(t *testing.T) {
		created := env.createProposal(t)

		expired := domain.AccessCode{
			ID:         idx.New(),
			Code:       codes.MustGenerate(),
			Resource:   domain.ResourceRef{Kind: domain.KindProposal, ID: created.Proposal.ID},
			ClientName: "Acme Co",
			ExpiresAt:  time.Now().UTC().Add(-time.Minute),
			CreatedAt:  time.Now().UTC().Add(-25 * time.Hour),
		}
		require.NoError(t, env.store.AccessCodes().CreateAccessCode(context.Background(), expired))

		rec := postValidate(t, handler, `{"code":"`+expired.Code+`"}`)
		require.Equal(t, http.StatusGone, rec.Code)

		var resp ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Equal(t, "code_expired", resp.Error)

		// The lazy delete means the next attempt no longer recognises it.
		rec = postValidate(t, handler, `{"code":"`+expired.Code+`"}`)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("code survives repeated validation", func(t *testing.T) {
		created := env.createProposal(t)

		for i := 0; i < 3; i++ {
			rec := postValidate(t, handler, `{"code":"`+created.Code.Code+`"}`)
			require.Equal(t, http.StatusOK, rec.Code)
		}
	})

	t.Run("record with no resource reference is a 500", func(t *testing.T) {
		record := domain.AccessCode{
			ID:        idx.New(),
			Code:      codes.MustGenerate(),
			ExpiresAt: time.Now().Add(time.Hour).UTC(),
			CreatedAt: time.Now().UTC(),
		}
		corrupt := &AccessValidateHandler{AccessService: &service.AccessService{
			Store: &corruptCodeStore{Store: env.store, record: record},
		}}

		rec := postValidate(t, corrupt, `{"code":"`+record.Code+`"}`)
		require.Equal(t, http.StatusInternalServerError, rec.Code)

		var resp ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Equal(t, "server_error", resp.Error)
	})
}

// corruptCodeStore hands back a code record with no resource reference, a
// shape the schema forbids but the handler must still answer for.
type corruptCodeStore struct {
	*sqlite.Store
	record domain.AccessCode
}

func (s *corruptCodeStore) AccessCodes() store.AccessCodes {
	return corruptCodeRepo{record: s.record}
}

type corruptCodeRepo struct {
	record domain.AccessCode
}

func (r corruptCodeRepo) GetAccessCodeByCode(context.Context, string) (domain.AccessCode, error) {
	return r.record, nil
}

func (corruptCodeRepo) CreateAccessCode(context.Context, domain.AccessCode) error { return nil }

func (corruptCodeRepo) DeleteAccessCode(context.Context, idx.ID) error { return nil }

func (corruptCodeRepo) DeleteAccessCodesForResource(context.Context, domain.ResourceRef) error {
	return nil
}
