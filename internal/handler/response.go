package handler

import (
	"net/http"

	"github.com/parcelbox/parcel-service/internal/httputil"
	"github.com/parcelbox/parcel-service/internal/model"
)

func writeJSON(w http.ResponseWriter, status int, data any) {
	httputil.WriteJSON(w, status, data)
}

type parcelItem struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Weight       float64  `json:"weight"`
	ContentValue float64  `json:"content_value"`
	DeliveryCost *float64 `json:"delivery_cost"`
	TypeName     string   `json:"type_name"`
}

type parcelList struct {
	Items []parcelItem `json:"items"`
	Total int          `json:"total"`
}

func formatParcel(row model.ParcelRow) parcelItem {
	return parcelItem{
		ID:           row.ID,
		Title:        row.Title,
		Weight:       row.Weight,
		ContentValue: row.ContentValue,
		DeliveryCost: row.DeliveryCost,
		TypeName:     row.TypeName,
	}
}

func formatParcels(rows []model.ParcelRow) []parcelItem {
	items := make([]parcelItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, formatParcel(row))
	}
	return items
}
