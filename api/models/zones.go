package models

import "github.com/whyumesh/zonal-election-system/storage"

type ZoneCreateRequest struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Name      string `json:"name"`
	LocalName string `json:"localName"`
	Seats     int    `json:"seats"`
	Active    bool   `json:"active"`
}

type ZoneUpdateRequest struct {
	Name      string `json:"name"`
	LocalName string `json:"localName"`
	Seats     int    `json:"seats"`
	Active    bool   `json:"active"`
}

type ZoneResponse struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Name      string `json:"name"`
	LocalName string `json:"localName,omitempty"`
	Seats     int    `json:"seats"`
	Active    bool   `json:"active"`
}

func TransformZoneFromStorage(z *storage.Zone) ZoneResponse {
	return ZoneResponse{
		ID:        z.ID,
		Type:      z.ElectionType,
		Name:      z.Name,
		LocalName: z.LocalName,
		Seats:     z.Seats,
		Active:    z.Active,
	}
}
