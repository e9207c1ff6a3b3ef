package rpc

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"safepump/core/state"
	"safepump/core/types"
	"safepump/crypto"
	"safepump/native/common"
	"safepump/native/vault"
	"safepump/storage/journal"
)

const maxBodyBytes = 1 << 20

func decodeBody(w http.ResponseWriter, r *http.Request, out interface{}) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		msg := "invalid payload"
		if errors.Is(err, io.EOF) {
			msg = "empty payload"
		}
		writeError(w, http.StatusBadRequest, "invalid_params", msg, err.Error())
		return false
	}
	return true
}

func (s *Server) handleSwap(w http.ResponseWriter, r *http.Request) {
	var payload SwapRequest
	if !decodeBody(w, r, &payload) {
		return
	}
	req, err := payload.toAsset()
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_params", err.Error(), nil)
		return
	}
	if req.RequestID == "" {
		req.RequestID = r.Header.Get(requestIDHeader)
	}

	s.mu.Lock()
	receipt, err := s.assets.Swap(r.Context(), s.env(), req)
	s.mu.Unlock()
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeResult(w, http.StatusOK, receiptFrom(receipt))
}

func (s *Server) handleLaunch(w http.ResponseWriter, r *http.Request) {
	var payload LaunchRequest
	if !decodeBody(w, r, &payload) {
		return
	}
	lp, err := payload.toAsset()
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_params", err.Error(), nil)
		return
	}
	if !crypto.VerifyLaunch(payload.Signature, lp.Message()) {
		writeEngineError(w, fmt.Errorf("%w: launch not signed by deployer %s", common.ErrInvalidSignature, lp.Deployer))
		return
	}
	out, err := s.apply(func(tx *state.Tx) (interface{}, error) {
		a, err := s.assets.Launch(r.Context(), tx, s.env(), lp)
		if err != nil {
			return nil, err
		}
		return assetView(a), nil
	})
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeResult(w, http.StatusCreated, out)
}

func (s *Server) handleGetAsset(w http.ResponseWriter, r *http.Request) {
	mint, err := crypto.ParseAddress(chi.URLParam(r, "mint"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_params", err.Error(), nil)
		return
	}
	out, err := s.view(func(tx *state.Tx) (interface{}, error) {
		a, err := s.assets.Asset(tx, mint)
		if err != nil {
			return nil, err
		}
		return assetView(a), nil
	})
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeResult(w, http.StatusOK, out)
}

func (s *Server) handleRegisterVault(w http.ResponseWriter, r *http.Request) {
	var payload AccountRequest
	if !decodeBody(w, r, &payload) {
		return
	}
	user, err := crypto.ParseAddress(payload.User)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_params", err.Error(), nil)
		return
	}
	out, err := s.apply(func(tx *state.Tx) (interface{}, error) {
		v, err := s.coord.RegisterVault(tx, user)
		if err != nil {
			return nil, err
		}
		return VaultView{Owner: v.Owner.String(), Nonce: v.Nonce}, nil
	})
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeResult(w, http.StatusCreated, out)
}

func (s *Server) handleGetVault(w http.ResponseWriter, r *http.Request) {
	user, err := crypto.ParseAddress(chi.URLParam(r, "user"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_params", err.Error(), nil)
		return
	}
	out, err := s.view(func(tx *state.Tx) (interface{}, error) {
		v, ok, err := vault.Load(tx, user)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, nil
		}
		view := VaultView{Owner: v.Owner.String(), Nonce: v.Nonce}
		if v.LastSigner != (crypto.PublicKey{}) {
			view.LastSigner = v.LastSigner.String()
		}
		return view, nil
	})
	if err != nil {
		writeEngineError(w, err)
		return
	}
	if out == nil {
		writeError(w, http.StatusNotFound, "not_found", fmt.Sprintf("%s: %s", common.ErrVaultNotRegistered, user), nil)
		return
	}
	writeResult(w, http.StatusOK, out)
}

func (s *Server) handleRegisterTrader(w http.ResponseWriter, r *http.Request) {
	var payload AccountRequest
	if !decodeBody(w, r, &payload) {
		return
	}
	user, err := crypto.ParseAddress(payload.User)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_params", err.Error(), nil)
		return
	}
	mint, err := crypto.ParseAddress(payload.Mint)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_params", err.Error(), nil)
		return
	}
	out, err := s.apply(func(tx *state.Tx) (interface{}, error) {
		if _, err := s.assets.RegisterTrader(tx, user, mint); err != nil {
			return nil, err
		}
		return AccountRequest{User: user.String(), Mint: mint.String()}, nil
	})
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeResult(w, http.StatusCreated, out)
}

func (s *Server) handleDistribute(w http.ResponseWriter, r *http.Request) {
	var payload DistributeRequest
	if !decodeBody(w, r, &payload) {
		return
	}
	denomination, err := crypto.ParseAddress(payload.Mint)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_params", err.Error(), nil)
		return
	}
	out, err := s.apply(func(tx *state.Tx) (interface{}, error) {
		summary, err := s.coord.Distribute(tx, s.env(), denomination)
		if err != nil {
			return nil, err
		}
		return DistributionView{
			Denomination: denomination.String(),
			Recipients:   summary.Recipients,
			Swapper:      summary.SwapperTotal,
			Holders:      summary.Holders,
			PerHolder:    summary.PerHolder,
			Badge:        summary.BadgeTotal,
			Dust:         summary.Dust,
		}, nil
	})
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeResult(w, http.StatusOK, out)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	if s.events == nil {
		writeError(w, http.StatusServiceUnavailable, "unavailable", "event journal not configured", nil)
		return
	}
	limit := journal.DefaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "invalid_params", "limit must be a positive integer", nil)
			return
		}
		limit = parsed
	}
	entries, err := s.events.Recent(r.Context(), r.URL.Query().Get("type"), limit)
	if err != nil {
		s.logger.Error("journal query failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal", "journal query failed", nil)
		return
	}
	type eventView struct {
		ID int64 `json:"id"`
		types.Event
		RecordedAt int64 `json:"recordedAt"`
	}
	out := make([]eventView, 0, len(entries))
	for _, e := range entries {
		out = append(out, eventView{ID: e.ID, Event: e.Flat(), RecordedAt: e.RecordedAt.UnixMilli()})
	}
	writeResult(w, http.StatusOK, out)
}
