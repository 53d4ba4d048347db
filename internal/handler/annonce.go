package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/colocetudiant/internal/ai"
	"github.com/iliyamo/colocetudiant/internal/listing"
	"github.com/iliyamo/colocetudiant/internal/middleware"
	"github.com/iliyamo/colocetudiant/internal/model"
	"github.com/iliyamo/colocetudiant/internal/queue"
	"github.com/iliyamo/colocetudiant/internal/repository"
	"github.com/iliyamo/colocetudiant/internal/service"
	"github.com/iliyamo/colocetudiant/internal/validation"
)

const (
	msgListError        = "Une erreur est survenue lors de la récupération des annonces."
	msgTitleRequired    = "Titre et description requis."
	msgDescribeRequired = "Veuillez remplir au moins le titre, la ville et le loyer pour générer."
	msgPublishFailed    = "Impossible de publier l'annonce. Vérifiez l'initialisation de votre base."
	msgAnnonceNotFound  = "Annonce introuvable."

	homeTeaserSize = 3
)

// AnnonceHandler serves the listing pages and the AI helpers of the
// publishing form.
type AnnonceHandler struct {
	Annonces  *repository.AnnonceRepo
	AI        *ai.Client
	Cache     *middleware.ResponseCache
	Publisher service.Publisher
	Log       *zap.Logger
	Now       func() time.Time
}

// annonceCard is a listing as shown on the listings page.
type annonceCard struct {
	model.Annonce
	TotalRent float64 `json:"total_rent"`
	Thumbnail string  `json:"thumbnail"`
}

// annonceDetail is a listing as shown on its own page.
type annonceDetail struct {
	model.Annonce
	TotalRent         float64  `json:"total_rent"`
	Gallery           []string `json:"gallery"`
	RentControlNotice string   `json:"rent_control_notice,omitempty"`
}

func cards(all []model.Annonce) []annonceCard {
	out := make([]annonceCard, 0, len(all))
	for _, a := range all {
		out = append(out, annonceCard{Annonce: a, TotalRent: a.TotalRent(), Thumbnail: a.Thumbnail()})
	}
	return out
}

func rentControlNotice(a model.Annonce) string {
	if !a.EncadrementLoyers {
		return ""
	}
	notice := "Zone soumise à l'encadrement des loyers."
	if a.LoyerReferenceMajore != nil {
		notice += fmt.Sprintf(" Loyer de ref. majoré : %s €", strconv.FormatFloat(*a.LoyerReferenceMajore, 'f', -1, 64))
	}
	return notice
}

func (h *AnnonceHandler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

// List fetches every listing and filters it in memory by total rent and
// city.
func (h *AnnonceHandler) List(c echo.Context) error {
	f := listing.ParseFilter(c.QueryParams())
	ctx, cancel := dbCtx(c)
	defer cancel()
	all, err := h.Annonces.List(ctx)
	if err != nil {
		return storageFailure(c, h.Log, err, "/v1/annonces", msgListError)
	}
	items := cards(f.Apply(all))
	return c.JSON(http.StatusOK, echo.Map{
		"items":  items,
		"count":  len(items),
		"filter": f,
		"bounds": listing.PriceBounds,
	})
}

// Home returns the latest listings for the landing page.
func (h *AnnonceHandler) Home(c echo.Context) error {
	ctx, cancel := dbCtx(c)
	defer cancel()
	latest, err := h.Annonces.Latest(ctx, homeTeaserSize)
	if err != nil {
		return storageFailure(c, h.Log, err, "/v1/home", msgListError)
	}
	return c.JSON(http.StatusOK, echo.Map{"latest": cards(latest)})
}

// Get returns one listing with its gallery and rent control notice.
func (h *AnnonceHandler) Get(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": msgAnnonceNotFound})
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	a, err := h.Annonces.GetByID(ctx, id)
	if err != nil {
		return storageFailure(c, h.Log, err, c.Request().URL.Path, msgListError)
	}
	if a == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": msgAnnonceNotFound})
	}
	return c.JSON(http.StatusOK, annonceDetail{
		Annonce:           *a,
		TotalRent:         a.TotalRent(),
		Gallery:           a.Gallery(),
		RentControlNotice: rentControlNotice(*a),
	})
}

// Draft returns a blank listing with the form defaults.
func (h *AnnonceHandler) Draft(c echo.Context) error {
	return c.JSON(http.StatusOK, model.NewDraft(h.now()))
}

func validateAnnonce(a model.Annonce) validation.Violations {
	v := validation.Violations{}
	validation.OneOf("type_bien", a.TypeBien.Valid(), v)
	validation.OneOf("dpe_lettre", a.DPELettre.Valid(), v)
	validation.OneOf("ges_lettre", a.GESLettre.Valid(), v)
	validation.NonNegativeFloat("surface", a.Surface, v)
	validation.NonNegativeFloat("loyer_base", a.LoyerBase, v)
	validation.NonNegativeFloat("charges", a.Charges, v)
	validation.NonNegativeFloat("depot_garantie", a.DepotGarantie, v)
	if a.Pieces < 1 {
		v["pieces"] = "must_be_positive"
	}
	for _, field := range []struct{ name, value string }{
		{"date_disponibilite", a.DateDisponibilite},
		{"date_indexation_energie", a.DateIndexationEnergie},
	} {
		if field.value == "" {
			continue
		}
		if _, err := time.Parse(model.DateLayout, field.value); err != nil {
			v[field.name] = "invalid_date"
		}
	}
	return v
}

// Create publishes a listing authored by the session user. Fields left out
// of the payload take the form defaults.
func (h *AnnonceHandler) Create(c echo.Context) error {
	a := model.NewDraft(h.now())
	if err := c.Bind(&a); err != nil {
		return invalid(c, msgInvalidBody, nil)
	}
	a.Titre = strings.TrimSpace(a.Titre)
	a.Description = strings.TrimSpace(a.Description)
	if a.Titre == "" || a.Description == "" {
		v := validation.Violations{}
		validation.Required("titre", a.Titre, v)
		validation.Required("description", a.Description, v)
		return invalid(c, msgTitleRequired, v)
	}
	if v := validateAnnonce(a); !v.Empty() {
		return invalid(c, "Certains champs de l'annonce sont invalides.", v)
	}

	u := middleware.CurrentUser(c)
	a.ID = 0
	a.AuteurID = u.ID
	a.AuteurUsername = u.Username

	ctx, cancel := dbCtx(c)
	defer cancel()
	stored, err := h.Annonces.Create(ctx, a)
	if err != nil {
		h.Log.Error("publish failed", zap.Error(err))
		status := http.StatusInternalServerError
		if isStorageMissing(err) {
			status = http.StatusServiceUnavailable
		}
		return c.JSON(status, echo.Map{"error": msgPublishFailed})
	}

	if err := h.Cache.Purge(ctx); err != nil {
		h.Log.Warn("cache purge failed", zap.Error(err))
	}
	service.PublishAsync(h.Publisher, queue.AnnoncePublished, queue.AnnoncePublishedEvent{
		AnnonceID:   stored.ID,
		Titre:       stored.Titre,
		Ville:       stored.Ville,
		AuteurID:    stored.AuteurID,
		TotalRent:   stored.TotalRent(),
		PublishedAt: stored.DateCreation.Format(time.RFC3339),
	})
	h.Log.Info("annonce published", zap.Int64("annonce_id", stored.ID), zap.String("auteur_id", stored.AuteurID))
	return c.JSON(http.StatusCreated, annonceDetail{
		Annonce:           stored,
		TotalRent:         stored.TotalRent(),
		Gallery:           stored.Gallery(),
		RentControlNotice: rentControlNotice(stored),
	})
}

// Describe generates an ad text for the draft in the body. The draft needs
// at least a title, a city and a base rent.
func (h *AnnonceHandler) Describe(c echo.Context) error {
	draft := model.NewDraft(h.now())
	if err := c.Bind(&draft); err != nil {
		return invalid(c, msgInvalidBody, nil)
	}
	if strings.TrimSpace(draft.Titre) == "" || strings.TrimSpace(draft.Ville) == "" || draft.LoyerBase <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msgDescribeRequired})
	}
	text := h.AI.Describe(c.Request().Context(), draft)
	return c.JSON(http.StatusOK, echo.Map{"description": text})
}

// Match scores the listing against the session user's roommate profile.
func (h *AnnonceHandler) Match(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": msgAnnonceNotFound})
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	a, err := h.Annonces.GetByID(ctx, id)
	if err != nil {
		return storageFailure(c, h.Log, err, c.Request().URL.Path, msgListError)
	}
	if a == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": msgAnnonceNotFound})
	}
	profile := middleware.CurrentUser(c).ProfileOrDefault()
	return c.JSON(http.StatusOK, h.AI.MatchScore(c.Request().Context(), a.Description, profile))
}
