package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/camuig/gold-ledger/internal/ai"
	"github.com/camuig/gold-ledger/internal/auth"
	"github.com/camuig/gold-ledger/internal/ledger"
	"github.com/camuig/gold-ledger/internal/storage"
)

const maxBodyBytes = 1 << 20

type envelope struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, message string, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{Code: status, Message: message, Data: data})
}

func ok(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, "success", data)
}

// writeError maps domain errors to status codes. Anything unrecognised is logged
// and reported as a 500 without detail.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	var ve *ledger.ValidationError
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, ve.Error(), nil)
	case errors.Is(err, storage.ErrNotFound):
		writeJSON(w, http.StatusNotFound, "记录未找到", nil)
	case errors.Is(err, auth.ErrPhoneTaken):
		writeJSON(w, http.StatusBadRequest, "该手机号已注册", nil)
	case errors.Is(err, auth.ErrUnknownPhone):
		writeJSON(w, http.StatusNotFound, "该手机号未注册，请先注册", nil)
	case errors.Is(err, auth.ErrWrongPassword):
		writeJSON(w, http.StatusUnauthorized, "密码错误，请重试", nil)
	case errors.Is(err, auth.ErrUnauthenticated):
		writeJSON(w, http.StatusUnauthorized, "未授权，请登录", nil)
	case errors.Is(err, ai.ErrNotConfigured):
		writeJSON(w, http.StatusServiceUnavailable, "市场简评未启用", nil)
	default:
		s.logger.Error("request failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, "服务器内部错误", nil)
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return &ledger.ValidationError{Field: "body", Reason: fmt.Sprintf("malformed JSON: %v", err)}
	}
	return nil
}
