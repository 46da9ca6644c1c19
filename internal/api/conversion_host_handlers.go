package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rflorenc/conversion-host-service/internal/errs"
	"github.com/rflorenc/conversion-host-service/internal/metrics"
	"github.com/rflorenc/conversion-host-service/internal/models"
	"github.com/rflorenc/conversion-host-service/internal/workflow"
)

// conversionHostRequest is the typed request body for enable submissions.
// auth_user is carried as a named field into the workflow input and never
// forwarded as an attribute of the record being created.
type conversionHostRequest struct {
	Name           string `json:"name"`
	ResourceType   string `json:"resource_type"`
	ResourceID     string `json:"resource_id"`
	VDDKPackageURL string `json:"vddk_package_url,omitempty"`
	AuthUser       string `json:"auth_user,omitempty"`
}

// validateEnableRequest is the fail-fast gate: it runs to completion before
// any resolver or queue call.
func validateEnableRequest(req conversionHostRequest) (workflow.EnableInput, error) {
	if req.ResourceID == "" {
		return workflow.EnableInput{}, errs.Validation("resource_id must be specified")
	}
	if req.ResourceType == "" {
		return workflow.EnableInput{}, errs.Validation("resource_type must be specified")
	}
	kind, err := models.ParseResourceKind(req.ResourceType)
	if err != nil {
		return workflow.EnableInput{}, err
	}
	return workflow.EnableInput{
		Name:           req.Name,
		Kind:           kind,
		ResourceID:     req.ResourceID,
		VDDKPackageURL: req.VDDKPackageURL,
		AuthUser:       req.AuthUser,
	}, nil
}

// CreateConversionHost validates and resolves the target resource, then
// enqueues the enable workflow. The response confirms submission only; the
// real outcome is observable by polling the task.
func (s *Server) CreateConversionHost(w http.ResponseWriter, r *http.Request) {
	var req conversionHostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeResult(w, http.StatusBadRequest, models.FailResult(errs.Validation("invalid JSON: %v", err)))
		return
	}

	in, err := validateEnableRequest(req)
	if err != nil {
		writeResult(w, errs.HTTPStatus(err), models.FailResult(err))
		return
	}

	res, err := s.Resolver.Resolve(r.Context(), in.Kind, in.ResourceID)
	if err != nil {
		writeResult(w, errs.HTTPStatus(err), models.FailResult(err))
		return
	}

	task := s.Tasks.Create("enable", fmt.Sprintf("%s/%s", in.Kind.Collection(), in.ResourceID))
	if err := s.Queue.Enqueue(r.Context(), func(ctx context.Context) {
		s.Engine.Enable(ctx, task, in)
	}); err != nil {
		task.Fail(err)
		s.Tasks.Record(task)
		writeResult(w, errs.HTTPStatus(err), models.FailResult(err))
		return
	}
	metrics.TasksEnqueued.WithLabelValues("enable").Inc()

	message := fmt.Sprintf("Enabling resource id:%s type:%s", res.ID, res.Kind)
	writeResult(w, http.StatusAccepted, models.OKResult(message, task.ID))
}

// DeleteConversionHost enqueues the disable workflow for an existing
// conversion host. Disabling an absent host is a not-found failure, never a
// silent success.
func (s *Server) DeleteConversionHost(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	// The body is optional: DELETE may carry {"auth_user": "..."}.
	var req struct {
		AuthUser string `json:"auth_user"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		writeResult(w, http.StatusBadRequest, models.FailResult(errs.Validation("invalid JSON: %v", err)))
		return
	}

	host := s.Hosts.Get(id)
	if host == nil {
		err := errs.NotFound("conversion host %s not found", id)
		writeResult(w, errs.HTTPStatus(err), models.FailResult(err))
		return
	}

	in := workflow.DisableInput{HostID: host.ID, AuthUser: req.AuthUser}
	task := s.Tasks.Create("disable", host.ID)
	if err := s.Queue.Enqueue(r.Context(), func(ctx context.Context) {
		s.Engine.Disable(ctx, task, in)
	}); err != nil {
		task.Fail(err)
		s.Tasks.Record(task)
		writeResult(w, errs.HTTPStatus(err), models.FailResult(err))
		return
	}
	metrics.TasksEnqueued.WithLabelValues("disable").Inc()

	message := fmt.Sprintf("Disabling and deleting conversion host id:%s name:%s", host.ID, host.Name)
	writeResult(w, http.StatusAccepted, models.OKResult(message, task.ID))
}

func (s *Server) ListConversionHosts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Hosts.List())
}

func (s *Server) GetConversionHost(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	host := s.Hosts.Get(id)
	if host == nil {
		writeError(w, http.StatusNotFound, "conversion host not found")
		return
	}
	writeJSON(w, http.StatusOK, host)
}
