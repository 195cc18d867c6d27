package handler

import (
	"net/http"

	"learnhub-web/internal/endpoint"
	"learnhub-web/internal/model"
)

type CourseHandler struct {
	reg *endpoint.Registry
}

func NewCourseHandler(reg *endpoint.Registry) *CourseHandler {
	return &CourseHandler{reg: reg}
}

func (h *CourseHandler) List(w http.ResponseWriter, r *http.Request) {
	sub, err := endpoint.FetchCourses.Subscribe(h.reg, struct{}{})
	if err != nil {
		writeError(w, err)
		return
	}
	defer sub.Close()

	res, err := sub.Get(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	courses := res.Courses
	if courses == nil {
		courses = []model.CourseView{}
	}

	writeSuccess(w, http.StatusOK, map[string]any{"courses": courses})
}

// Enrollments lists the current user's enrollments. Zero enrollments is a
// normal state, rendered as an empty list.
func (h *CourseHandler) Enrollments(w http.ResponseWriter, r *http.Request) {
	user := h.reg.Session().Snapshot().User
	if user == nil || user.ID == "" {
		writeError(w, model.ErrNotAuthenticated)
		return
	}

	sub, err := endpoint.FetchEnrollments.Subscribe(h.reg, user.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	defer sub.Close()

	res, err := sub.Get(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	enrollments := res.Enrollments
	if enrollments == nil {
		enrollments = []model.EnrollmentView{}
	}

	writeSuccess(w, http.StatusOK, map[string]any{"enrollments": enrollments})
}
