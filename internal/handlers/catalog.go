package handlers

import (
	"net/http"

	"github.com/ember-vale/api/internal/catalog"
)

// CatalogHandler serves the static weapon, skill, and quest catalog.
type CatalogHandler struct {
	catalog *catalog.Catalog
}

// NewCatalogHandler creates a new catalog handler.
func NewCatalogHandler(cat *catalog.Catalog) *CatalogHandler {
	return &CatalogHandler{catalog: cat}
}

// Weapons handles GET /catalog/weapons
func (h *CatalogHandler) Weapons(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeOK(w, http.StatusOK, map[string]any{"weapons": h.catalog.Weapons()})
}

// Skills handles GET /catalog/skills
func (h *CatalogHandler) Skills(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeOK(w, http.StatusOK, map[string]any{"skills": h.catalog.Skills()})
}

// Quests handles GET /catalog/quests
func (h *CatalogHandler) Quests(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeOK(w, http.StatusOK, map[string]any{"quests": h.catalog.Quests()})
}
