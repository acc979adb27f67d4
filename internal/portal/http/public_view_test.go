package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPublicViewHandler(t *testing.T) {
	env := newTestEnv(t)
	handler := &PublicViewHandler{
		AccessService:   env.access,
		ProposalService: env.proposal,
		InvoiceService:  env.invoice,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/public/proposals/{id}", handler.HandleProposal)
	mux.HandleFunc("GET /v1/public/invoices/{id}", handler.HandleInvoice)

	get := func(t *testing.T, path string) *httptest.ResponseRecorder {
		t.Helper()
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		return rec
	}

	proposal := env.createProposal(t)
	invoice := env.createInvoice(t)

	t.Run("valid code opens the proposal", func(t *testing.T) {
		rec := get(t, "/v1/public/proposals/"+proposal.Proposal.ID.String()+"?code="+proposal.Code.Code)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp ProposalResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Equal(t, proposal.Proposal.ID.String(), resp.ID)
		require.Equal(t, "Website redesign", resp.Title)
		// The share code is never echoed back on the public view.
		require.Nil(t, resp.OTP)
	})

	t.Run("valid code opens the invoice with items", func(t *testing.T) {
		rec := get(t, "/v1/public/invoices/"+invoice.Invoice.ID.String()+"?code="+invoice.Code.Code)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp InvoiceResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Equal(t, invoice.Invoice.ID.String(), resp.ID)
		require.Len(t, resp.Items, 1)
		require.Equal(t, int64(150000), resp.TotalCents)
	})

	t.Run("missing code is a 400", func(t *testing.T) {
		rec := get(t, "/v1/public/proposals/"+proposal.Proposal.ID.String())
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown code is a 401", func(t *testing.T) {
		rec := get(t, "/v1/public/proposals/"+proposal.Proposal.ID.String()+"?code=zzzzzzzz")
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("proposal code does not open an invoice", func(t *testing.T) {
		rec := get(t, "/v1/public/invoices/"+invoice.Invoice.ID.String()+"?code="+proposal.Code.Code)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("code does not open a different proposal", func(t *testing.T) {
		other := env.createProposal(t)
		rec := get(t, "/v1/public/proposals/"+other.Proposal.ID.String()+"?code="+proposal.Code.Code)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
