package web

import (
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/camuig/gold-ledger/internal/ai"
	"github.com/camuig/gold-ledger/internal/ledger"
	"github.com/camuig/gold-ledger/internal/position"
	"github.com/camuig/gold-ledger/internal/records"
)

func (s *Server) handlePrice(w http.ResponseWriter, r *http.Request) {
	ok(w, newPriceResponse(s.deps.Resolver.Resolve(r.Context())))
}

// Records

func (s *Server) handleCreateRecord(w http.ResponseWriter, r *http.Request) {
	var in records.Input
	if err := decodeBody(w, r, &in); err != nil {
		s.writeError(w, err)
		return
	}
	rec, err := s.deps.Records.Add(r.Context(), currentUser(r).ID, in)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, "添加成功", rec)
}

func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	listing, err := s.deps.Records.List(r.Context(), currentUser(r).ID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	ok(w, listResponse{Summary: newSummaryResponse(listing.Summary), List: listing.Records})
}

func (s *Server) handleGetRecord(w http.ResponseWriter, r *http.Request) {
	rec, err := s.deps.Records.Get(r.Context(), currentUser(r).ID, r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	ok(w, rec)
}

func (s *Server) handleUpdateRecord(w http.ResponseWriter, r *http.Request) {
	var in records.Input
	if err := decodeBody(w, r, &in); err != nil {
		s.writeError(w, err)
		return
	}
	rec, err := s.deps.Records.Update(r.Context(), currentUser(r).ID, r.PathValue("id"), in)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, "更新成功", rec)
}

func (s *Server) handleDeleteRecord(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Records.Delete(r.Context(), currentUser(r).ID, r.PathValue("id")); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, "删除成功", nil)
}

// handleSummary values the position at ?price=<p> or, with ?valuate=live, at the
// resolved reference price. Without either only the summary is returned.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	choice := position.PriceChoice{Live: q.Get("valuate") == "live"}
	if raw := strings.TrimSpace(q.Get("price")); raw != "" {
		p, err := decimal.NewFromString(raw)
		if err != nil {
			s.writeError(w, &ledger.ValidationError{Field: "price", Reason: "not a number"})
			return
		}
		choice.Explicit = &p
	}

	report, err := s.deps.Positions.Report(r.Context(), currentUser(r).ID, choice)
	if err != nil {
		s.writeError(w, err)
		return
	}
	ok(w, newReportResponse(*report))
}

// Users

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var c credentials
	if err := decodeBody(w, r, &c); err != nil {
		s.writeError(w, err)
		return
	}
	user, err := s.deps.Auth.Register(r.Context(), c.Phone, c.Password)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, "注册成功", user)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var c credentials
	if err := decodeBody(w, r, &c); err != nil {
		s.writeError(w, err)
		return
	}
	session, err := s.deps.Auth.Login(r.Context(), c.Phone, c.Password)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, "登录成功", loginResponse{
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
		UserInfo:  session.User,
	})
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	user, err := s.deps.Auth.Profile(r.Context(), currentUser(r).ID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	ok(w, user)
}

// Admin

func (s *Server) handleAdminUsers(w http.ResponseWriter, r *http.Request) {
	overview, err := s.deps.Records.Overview(r.Context(), s.deps.Directory)
	if err != nil {
		s.writeError(w, err)
		return
	}
	out := make([]adminUserResponse, 0, len(overview))
	for _, u := range overview {
		out = append(out, adminUserResponse{
			UserID:      u.UserID,
			Phone:       u.Phone,
			Nickname:    u.Nickname,
			CreateTime:  u.CreateTime,
			TotalWeight: u.TotalWeight.StringFixed(2),
			TotalCost:   u.TotalCost.StringFixed(2),
			Records:     u.Records,
		})
	}
	ok(w, out)
}

func (s *Server) handleAdminUserRecords(w http.ResponseWriter, r *http.Request) {
	listing, err := s.deps.Records.List(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	ok(w, listResponse{Summary: newSummaryResponse(listing.Summary), List: listing.Records})
}

// Market

func (s *Server) handleNews(w http.ResponseWriter, r *http.Request) {
	res := s.deps.News.GoldNews(r.Context())
	message := "success"
	if res.Fallback {
		message = "新闻接口不可用，显示默认新闻"
	}
	writeJSON(w, http.StatusOK, message, res.Items)
}

func (s *Server) handleBrief(w http.ResponseWriter, r *http.Request) {
	if !s.deps.Brief.Enabled() {
		s.writeError(w, ai.ErrNotConfigured)
		return
	}
	req := &ai.BriefRequest{
		Price:     s.deps.Resolver.Resolve(r.Context()),
		Headlines: s.deps.News.GoldNews(r.Context()).Items,
	}
	brief, err := s.deps.Brief.Brief(r.Context(), req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	ok(w, brief)
}
