package handler

import (
	"strings"

	"votesmart/internal/registry"
	"votesmart/internal/registry/service"
	dErrors "votesmart/pkg/domain-errors"
)

// SetMasterRequest is the HTTP request body for POST /registry/master.
type SetMasterRequest struct {
	AccountID string `json:"account_id"`
}

// Validate validates the request.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *SetMasterRequest) Validate() error {
	r.AccountID = strings.TrimSpace(r.AccountID)
	if r.AccountID == "" {
		return dErrors.New(dErrors.CodeBadRequest, "account_id is required")
	}
	return nil
}

// AddCampaignRequest is the HTTP request body for POST /registry/campaigns.
type AddCampaignRequest struct {
	ID    uint64 `json:"id"`
	Title string `json:"title"`
}

func (r *AddCampaignRequest) Validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return dErrors.New(dErrors.CodeBadRequest, "title is required")
	}
	return nil
}

// TitledEntry is one id+title pair in a bulk insert body.
type TitledEntry struct {
	ID    uint64 `json:"id"`
	Title string `json:"title"`
}

// AddPartiesRequest is the HTTP request body for POST /registry/parties.
type AddPartiesRequest struct {
	Parties []TitledEntry `json:"parties"`
}

func (r *AddPartiesRequest) Validate() error {
	if len(r.Parties) == 0 {
		return dErrors.New(dErrors.CodeBadRequest, "parties must not be empty")
	}
	return nil
}

// Entries converts the body into store entries.
func (r *AddPartiesRequest) Entries() []registry.Entry[string] {
	entries := make([]registry.Entry[string], 0, len(r.Parties))
	for _, p := range r.Parties {
		entries = append(entries, registry.Entry[string]{ID: p.ID, Value: p.Title})
	}
	return entries
}

// AddRegionsRequest is the HTTP request body for POST /registry/regions.
type AddRegionsRequest struct {
	Regions []TitledEntry `json:"regions"`
}

func (r *AddRegionsRequest) Validate() error {
	if len(r.Regions) == 0 {
		return dErrors.New(dErrors.CodeBadRequest, "regions must not be empty")
	}
	return nil
}

func (r *AddRegionsRequest) Entries() []registry.Entry[registry.Region] {
	entries := make([]registry.Entry[registry.Region], 0, len(r.Regions))
	for _, reg := range r.Regions {
		entries = append(entries, registry.Entry[registry.Region]{
			ID:    reg.ID,
			Value: registry.Region{Title: reg.Title},
		})
	}
	return entries
}

// DistrictEntry is one district in a bulk insert body.
type DistrictEntry struct {
	ID       uint64 `json:"id"`
	RegionID uint64 `json:"region_id"`
	Title    string `json:"title"`
}

// AddDistrictsRequest is the HTTP request body for POST /registry/districts.
type AddDistrictsRequest struct {
	Districts []DistrictEntry `json:"districts"`
}

func (r *AddDistrictsRequest) Validate() error {
	if len(r.Districts) == 0 {
		return dErrors.New(dErrors.CodeBadRequest, "districts must not be empty")
	}
	return nil
}

func (r *AddDistrictsRequest) Entries() []registry.Entry[registry.District] {
	entries := make([]registry.Entry[registry.District], 0, len(r.Districts))
	for _, d := range r.Districts {
		entries = append(entries, registry.Entry[registry.District]{
			ID:    d.ID,
			Value: registry.District{RegionID: d.RegionID, Title: d.Title},
		})
	}
	return entries
}

// CandidateEntry is one candidate in a bulk insert body.
type CandidateEntry struct {
	ID      uint64 `json:"id"`
	Title   string `json:"title"`
	PartyID uint64 `json:"party_id"`
}

// AddCandidatesRequest is the HTTP request body for POST /registry/candidates.
type AddCandidatesRequest struct {
	Candidates []CandidateEntry `json:"candidates"`
}

func (r *AddCandidatesRequest) Validate() error {
	if len(r.Candidates) == 0 {
		return dErrors.New(dErrors.CodeBadRequest, "candidates must not be empty")
	}
	return nil
}

func (r *AddCandidatesRequest) Entries() []registry.Entry[registry.Candidate] {
	entries := make([]registry.Entry[registry.Candidate], 0, len(r.Candidates))
	for _, c := range r.Candidates {
		entries = append(entries, registry.Entry[registry.Candidate]{
			ID:    c.ID,
			Value: registry.Candidate{Title: c.Title, PartyID: c.PartyID},
		})
	}
	return entries
}

// RecommendationEntry binds one campaign+district pair to a candidate.
type RecommendationEntry struct {
	CampaignID  uint64 `json:"campaign_id"`
	DistrictID  uint64 `json:"district_id"`
	CandidateID uint64 `json:"candidate_id"`
}

// AddRecommendationsRequest is the HTTP request body for
// POST /registry/recommendations.
type AddRecommendationsRequest struct {
	Recommendations []RecommendationEntry `json:"recommendations"`
}

func (r *AddRecommendationsRequest) Validate() error {
	if len(r.Recommendations) == 0 {
		return dErrors.New(dErrors.CodeBadRequest, "recommendations must not be empty")
	}
	return nil
}

func (r *AddRecommendationsRequest) Entries() []service.IndexEntry {
	entries := make([]service.IndexEntry, 0, len(r.Recommendations))
	for _, rec := range r.Recommendations {
		entries = append(entries, service.IndexEntry{
			Key: registry.Key{
				CampaignID: rec.CampaignID,
				DistrictID: rec.DistrictID,
			},
			CandidateID: rec.CandidateID,
		})
	}
	return entries
}
