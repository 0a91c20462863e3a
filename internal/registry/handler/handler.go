package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"votesmart/internal/registry"
	"votesmart/internal/registry/service"
	dErrors "votesmart/pkg/domain-errors"
	"votesmart/pkg/platform/httputil"
	"votesmart/pkg/requestcontext"
)

// Service defines the interface for registry operations.
type Service interface {
	SetMasterAccountID(ctx context.Context, account string) error
	AddCampaign(ctx context.Context, id uint64, title string) error
	Campaigns(ctx context.Context, fromIndex, limit *uint64) ([]registry.Entry[string], error)
	AddParties(ctx context.Context, entries []registry.Entry[string]) error
	Parties(ctx context.Context, fromIndex, limit *uint64) ([]registry.Entry[string], error)
	AddRegions(ctx context.Context, entries []registry.Entry[registry.Region]) error
	Regions(ctx context.Context, fromIndex, limit *uint64) ([]registry.Entry[registry.Region], error)
	AddDistricts(ctx context.Context, entries []registry.Entry[registry.District]) error
	Districts(ctx context.Context, fromIndex, limit *uint64) ([]registry.Entry[registry.District], error)
	DistrictsByRegion(ctx context.Context, regionID uint64, fromIndex, limit *uint64) ([]registry.Entry[registry.District], error)
	AddCandidates(ctx context.Context, entries []registry.Entry[registry.Candidate]) error
	Candidates(ctx context.Context, fromIndex, limit *uint64) ([]registry.Entry[registry.Candidate], error)
	AddRecommendations(ctx context.Context, entries []service.IndexEntry) error
	Resolve(ctx context.Context, campaignID, districtID uint64) (*registry.Recommendation, error)
}

// Handler wires registry endpoints to the registry service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a registry handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterMutations mounts the admin-gated write endpoints. The router
// group they land in must already authenticate callers.
func (h *Handler) RegisterMutations(r chi.Router) {
	r.Post("/registry/master", h.HandleSetMaster)
	r.Post("/registry/campaigns", h.HandleAddCampaign)
	r.Post("/registry/parties", h.HandleAddParties)
	r.Post("/registry/regions", h.HandleAddRegions)
	r.Post("/registry/districts", h.HandleAddDistricts)
	r.Post("/registry/candidates", h.HandleAddCandidates)
	r.Post("/registry/recommendations", h.HandleAddRecommendations)
}

// RegisterLookups mounts the public read endpoints.
func (h *Handler) RegisterLookups(r chi.Router) {
	r.Get("/registry/campaigns", h.HandleListCampaigns)
	r.Get("/registry/parties", h.HandleListParties)
	r.Get("/registry/regions", h.HandleListRegions)
	r.Get("/registry/districts", h.HandleListDistricts)
	r.Get("/registry/regions/{regionID}/districts", h.HandleListDistrictsByRegion)
	r.Get("/registry/candidates", h.HandleListCandidates)
	r.Get("/registry/recommendation", h.HandleResolve)
}

// window parses the optional from_index and limit query parameters. Both
// are positions into the table, absent means unbounded on that side.
func window(r *http.Request) (fromIndex, limit *uint64, err error) {
	fromIndex, err = queryUint64(r, "from_index")
	if err != nil {
		return nil, nil, err
	}
	limit, err = queryUint64(r, "limit")
	if err != nil {
		return nil, nil, err
	}
	return fromIndex, limit, nil
}

func queryUint64(r *http.Request, name string) (*uint64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, name+" must be an unsigned integer")
	}
	return &v, nil
}

// HandleSetMaster handles POST /registry/master requests.
func (h *Handler) HandleSetMaster(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[SetMasterRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	if err := h.service.SetMasterAccountID(ctx, req.AccountID); err != nil {
		h.logger.ErrorContext(ctx, "set master account failed",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "master account changed",
		"request_id", requestID,
		"account_id", req.AccountID,
	)
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"account_id": req.AccountID})
}

// HandleAddCampaign handles POST /registry/campaigns requests.
func (h *Handler) HandleAddCampaign(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[AddCampaignRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	if err := h.service.AddCampaign(ctx, req.ID, req.Title); err != nil {
		h.logger.ErrorContext(ctx, "add campaign failed",
			"request_id", requestID,
			"campaign_id", req.ID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, TitledResponse{ID: req.ID, Title: req.Title})
}

// HandleAddParties handles POST /registry/parties requests.
func (h *Handler) HandleAddParties(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[AddPartiesRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	if err := h.service.AddParties(ctx, req.Entries()); err != nil {
		h.logger.ErrorContext(ctx, "add parties failed",
			"request_id", requestID,
			"count", len(req.Parties),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, map[string]int{"inserted": len(req.Parties)})
}

// HandleAddRegions handles POST /registry/regions requests.
func (h *Handler) HandleAddRegions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[AddRegionsRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	if err := h.service.AddRegions(ctx, req.Entries()); err != nil {
		h.logger.ErrorContext(ctx, "add regions failed",
			"request_id", requestID,
			"count", len(req.Regions),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, map[string]int{"inserted": len(req.Regions)})
}

// HandleAddDistricts handles POST /registry/districts requests.
func (h *Handler) HandleAddDistricts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[AddDistrictsRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	if err := h.service.AddDistricts(ctx, req.Entries()); err != nil {
		h.logger.ErrorContext(ctx, "add districts failed",
			"request_id", requestID,
			"count", len(req.Districts),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, map[string]int{"inserted": len(req.Districts)})
}

// HandleAddCandidates handles POST /registry/candidates requests.
func (h *Handler) HandleAddCandidates(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[AddCandidatesRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	if err := h.service.AddCandidates(ctx, req.Entries()); err != nil {
		h.logger.ErrorContext(ctx, "add candidates failed",
			"request_id", requestID,
			"count", len(req.Candidates),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, map[string]int{"inserted": len(req.Candidates)})
}

// HandleAddRecommendations handles POST /registry/recommendations requests.
func (h *Handler) HandleAddRecommendations(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[AddRecommendationsRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	if err := h.service.AddRecommendations(ctx, req.Entries()); err != nil {
		h.logger.ErrorContext(ctx, "add recommendations failed",
			"request_id", requestID,
			"count", len(req.Recommendations),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, map[string]int{"inserted": len(req.Recommendations)})
}

// HandleListCampaigns handles GET /registry/campaigns requests.
func (h *Handler) HandleListCampaigns(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	fromIndex, limit, err := window(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	entries, err := h.service.Campaigns(ctx, fromIndex, limit)
	if err != nil {
		h.logger.ErrorContext(ctx, "list campaigns failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromTitled(entries))
}

// HandleListParties handles GET /registry/parties requests.
func (h *Handler) HandleListParties(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	fromIndex, limit, err := window(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	entries, err := h.service.Parties(ctx, fromIndex, limit)
	if err != nil {
		h.logger.ErrorContext(ctx, "list parties failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromTitled(entries))
}

// HandleListRegions handles GET /registry/regions requests.
func (h *Handler) HandleListRegions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	fromIndex, limit, err := window(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	entries, err := h.service.Regions(ctx, fromIndex, limit)
	if err != nil {
		h.logger.ErrorContext(ctx, "list regions failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromRegions(entries))
}

// HandleListDistricts handles GET /registry/districts requests.
func (h *Handler) HandleListDistricts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	fromIndex, limit, err := window(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	entries, err := h.service.Districts(ctx, fromIndex, limit)
	if err != nil {
		h.logger.ErrorContext(ctx, "list districts failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromDistricts(entries))
}

// HandleListDistrictsByRegion handles GET /registry/regions/{regionID}/districts.
func (h *Handler) HandleListDistrictsByRegion(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	regionID, err := strconv.ParseUint(chi.URLParam(r, "regionID"), 10, 64)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "region id must be an unsigned integer"))
		return
	}

	fromIndex, limit, werr := window(r)
	if werr != nil {
		httputil.WriteError(w, werr)
		return
	}

	entries, err := h.service.DistrictsByRegion(ctx, regionID, fromIndex, limit)
	if err != nil {
		h.logger.ErrorContext(ctx, "list districts by region failed",
			"request_id", requestcontext.RequestID(ctx),
			"region_id", regionID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromDistricts(entries))
}

// HandleListCandidates handles GET /registry/candidates requests.
func (h *Handler) HandleListCandidates(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	fromIndex, limit, err := window(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	entries, err := h.service.Candidates(ctx, fromIndex, limit)
	if err != nil {
		h.logger.ErrorContext(ctx, "list candidates failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromCandidates(entries))
}

// HandleResolve handles GET /registry/recommendation requests. An unmapped
// pair yields a 200 with a null recommendation, never an error.
func (h *Handler) HandleResolve(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	campaignID, err := queryUint64(r, "campaign_id")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	districtID, err := queryUint64(r, "district_id")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if campaignID == nil || districtID == nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "campaign_id and district_id are required"))
		return
	}

	rec, err := h.service.Resolve(ctx, *campaignID, *districtID)
	if err != nil {
		h.logger.ErrorContext(ctx, "recommendation lookup failed",
			"request_id", requestcontext.RequestID(ctx),
			"campaign_id", *campaignID,
			"district_id", *districtID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, RecommendationResponse{Recommendation: rec})
}
