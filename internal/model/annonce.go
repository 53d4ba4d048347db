package model

import (
	"fmt"
	"time"
)

// PropertyType is the kind of housing offered.
type PropertyType string

const (
	PropertyMaison      PropertyType = "maison"
	PropertyAppartement PropertyType = "appartement"
)

func (t PropertyType) Valid() bool { return t == PropertyMaison || t == PropertyAppartement }

// EnergyLetter is a DPE or GES rating, A (best) to G (worst).
type EnergyLetter string

func (l EnergyLetter) Valid() bool {
	return len(l) == 1 && l[0] >= 'A' && l[0] <= 'G'
}

// DateLayout is the calendar date format used by the listing form.
const DateLayout = "2006-01-02"

const placeholderURL = "https://picsum.photos/%d/%d?random=%d"

// Annonce is a published housing offer (table annonces).
type Annonce struct {
	ID                    int64        `json:"id"`
	Titre                 string       `json:"titre"`
	Description           string       `json:"description"`
	AuteurID              string       `json:"auteur_id"`
	AuteurUsername        string       `json:"auteur_username,omitempty"`
	DateCreation          time.Time    `json:"date_creation"`
	TypeBien              PropertyType `json:"type_bien"`
	Adresse               string       `json:"adresse"`
	Ville                 string       `json:"ville"`
	Surface               float64      `json:"surface"`
	Pieces                int          `json:"pieces"`
	DateDisponibilite     string       `json:"date_disponibilite"`
	Meuble                bool         `json:"meuble"`
	Parking               bool         `json:"parking"`
	Chauffage             string       `json:"chauffage"`
	SourceEnergie         string       `json:"source_energie"`
	DPEConso              float64      `json:"dpe_conso"`
	DPELettre             EnergyLetter `json:"dpe_lettre"`
	GESEmission           float64      `json:"ges_emission"`
	GESLettre             EnergyLetter `json:"ges_lettre"`
	ConsoFinale           float64      `json:"conso_finale"`
	CoutEnergieMin        float64      `json:"cout_energie_min"`
	CoutEnergieMax        float64      `json:"cout_energie_max"`
	DateIndexationEnergie string       `json:"date_indexation_energie"`
	Photos                []string     `json:"photos"`
	Plan                  *string      `json:"plan"`
	LoyerBase             float64      `json:"loyer_base"`
	Charges               float64      `json:"charges"`
	DepotGarantie         float64      `json:"depot_garantie"`
	EncadrementLoyers     bool         `json:"encadrement_loyers"`
	LoyerReferenceMajore  *float64     `json:"loyer_reference_majore,omitempty"`
}

// TotalRent is the monthly amount shown to tenants: base rent plus charges.
func (a Annonce) TotalRent() float64 { return a.LoyerBase + a.Charges }

// Gallery returns the photos to display, or a single placeholder image.
func (a Annonce) Gallery() []string {
	if len(a.Photos) > 0 {
		return a.Photos
	}
	return []string{fmt.Sprintf(placeholderURL, 800, 600, a.ID)}
}

// Thumbnail is the card image used on the listing page.
func (a Annonce) Thumbnail() string {
	if len(a.Photos) > 0 {
		return a.Photos[0]
	}
	return fmt.Sprintf(placeholderURL, 400, 300, a.ID)
}

// NewDraft returns a listing pre-filled with the publishing form defaults.
func NewDraft(now time.Time) Annonce {
	today := now.Format(DateLayout)
	return Annonce{
		TypeBien:              PropertyAppartement,
		Pieces:                1,
		DateDisponibilite:     today,
		Chauffage:             "Individuel",
		SourceEnergie:         "Électrique",
		DPELettre:             "D",
		GESLettre:             "D",
		DateIndexationEnergie: today,
		Photos:                []string{},
	}
}
