package web

import (
	"database/sql"
	"errors"
	"net/http"
	"time"
	"varchess/internal/util"

	"github.com/go-chi/chi"
)

func (s *Server) getVariants(w http.ResponseWriter, r *http.Request) {
	variants, err := s.back.GetVariants()
	if err != nil {
		s.error(w, err, http.StatusInternalServerError)
		return
	}

	s.cache(w, "public", 1*time.Hour)
	s.response(w, http.StatusOK, variants)
}

func (s *Server) getPlayer(w http.ResponseWriter, r *http.Request) {
	playerID, err := util.ParseUUIDAsBlob(chi.URLParam(r, "id"))
	if err != nil {
		s.error(w, err, http.StatusBadRequest)
		return
	}

	player, err := s.back.GetPlayer(playerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.error(w, err, http.StatusNotFound)
			return
		}

		s.error(w, err, http.StatusInternalServerError)
		return
	}

	s.response(w, http.StatusOK, player)
}

func (s *Server) getPlayerRatings(w http.ResponseWriter, r *http.Request) {
	playerID, err := util.ParseUUIDAsBlob(chi.URLParam(r, "id"))
	if err != nil {
		s.error(w, err, http.StatusBadRequest)
		return
	}

	ratings, err := s.back.GetPlayerRatings(playerID)
	if err != nil {
		s.error(w, err, http.StatusInternalServerError)
		return
	}

	s.response(w, http.StatusOK, ratings)
}

func (s *Server) getRatingHistory(w http.ResponseWriter, r *http.Request) {
	playerID, err := util.ParseUUIDAsBlob(chi.URLParam(r, "id"))
	if err != nil {
		s.error(w, err, http.StatusBadRequest)
		return
	}

	history, err := s.back.GetRatingHistory(playerID, r.URL.Query().Get("variant"))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) { // unknown variant short code
			s.error(w, err, http.StatusNotFound)
			return
		}

		s.error(w, err, http.StatusInternalServerError)
		return
	}

	s.response(w, http.StatusOK, history)
}
