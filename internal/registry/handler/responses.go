package handler

import (
	"votesmart/internal/registry"
)

// TitledResponse is one id+title row in a list response.
type TitledResponse struct {
	ID    uint64 `json:"id"`
	Title string `json:"title"`
}

// DistrictResponse is one district row in a list response.
type DistrictResponse struct {
	ID       uint64 `json:"id"`
	RegionID uint64 `json:"region_id"`
	Title    string `json:"title"`
}

// CandidateResponse is one candidate row in a list response.
type CandidateResponse struct {
	ID      uint64 `json:"id"`
	Title   string `json:"title"`
	PartyID uint64 `json:"party_id"`
}

// RecommendationResponse wraps the resolver result. Recommendation is null
// when the pair is unmapped or the mapped candidate no longer exists.
type RecommendationResponse struct {
	Recommendation *registry.Recommendation `json:"recommendation"`
}

func fromTitled(entries []registry.Entry[string]) []TitledResponse {
	out := make([]TitledResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, TitledResponse{ID: e.ID, Title: e.Value})
	}
	return out
}

func fromRegions(entries []registry.Entry[registry.Region]) []TitledResponse {
	out := make([]TitledResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, TitledResponse{ID: e.ID, Title: e.Value.Title})
	}
	return out
}

func fromDistricts(entries []registry.Entry[registry.District]) []DistrictResponse {
	out := make([]DistrictResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, DistrictResponse{ID: e.ID, RegionID: e.Value.RegionID, Title: e.Value.Title})
	}
	return out
}

func fromCandidates(entries []registry.Entry[registry.Candidate]) []CandidateResponse {
	out := make([]CandidateResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, CandidateResponse{ID: e.ID, Title: e.Value.Title, PartyID: e.Value.PartyID})
	}
	return out
}
