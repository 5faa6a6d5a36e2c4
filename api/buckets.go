package api

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
)

type bucketRequest struct {
	Name string `json:"name"`
}

func bucketID(r *http.Request) int64 {
	// the route pattern only admits digits
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	return id
}

func (s *Server) handleListBuckets(w http.ResponseWriter, r *http.Request) {
	buckets, err := s.store.ListBuckets(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, buckets)
}

func (s *Server) handleCreateBucket(w http.ResponseWriter, r *http.Request) {
	var req bucketRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	b, err := s.store.CreateBucket(r.Context(), req.Name)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

func (s *Server) handleRenameBucket(w http.ResponseWriter, r *http.Request) {
	var req bucketRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	id := bucketID(r)
	if err := s.store.RenameBucket(r.Context(), id, req.Name); err != nil {
		s.fail(w, r, err)
		return
	}
	b, err := s.store.GetBucket(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (s *Server) handleDeleteBucket(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteBucket(r.Context(), bucketID(r)); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
