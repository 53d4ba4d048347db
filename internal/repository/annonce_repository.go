package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/iliyamo/colocetudiant/internal/model"
)

// AnnonceRepo reads and inserts rows of the annonces table. Listings are
// immutable once published, so there is no update or delete.
type AnnonceRepo struct {
	db *sql.DB
}

func NewAnnonceRepo(db *sql.DB) *AnnonceRepo {
	return &AnnonceRepo{db: db}
}

const annonceColumns = `id,titre,description,auteur_id,auteur_username,date_creation,type_bien,adresse,ville,
surface,pieces,date_disponibilite,meuble,parking,chauffage,source_energie,dpe_conso,dpe_lettre,ges_emission,
ges_lettre,conso_finale,cout_energie_min,cout_energie_max,date_indexation_energie,photos,plan,loyer_base,
charges,depot_garantie,encadrement_loyers,loyer_reference_majore`

func scanAnnonce(s rowScanner) (model.Annonce, error) {
	var (
		a         model.Annonce
		username  sql.NullString
		typeBien  string
		dpe, ges  string
		photos    sql.NullString
		plan      sql.NullString
		loyerBase sql.NullFloat64
		charges   sql.NullFloat64
		depot     sql.NullFloat64
		refMajore sql.NullFloat64
	)
	err := s.Scan(&a.ID, &a.Titre, &a.Description, &a.AuteurID, &username, &a.DateCreation, &typeBien,
		&a.Adresse, &a.Ville, &a.Surface, &a.Pieces, &a.DateDisponibilite, &a.Meuble, &a.Parking,
		&a.Chauffage, &a.SourceEnergie, &a.DPEConso, &dpe, &a.GESEmission, &ges, &a.ConsoFinale,
		&a.CoutEnergieMin, &a.CoutEnergieMax, &a.DateIndexationEnergie, &photos, &plan, &loyerBase,
		&charges, &depot, &a.EncadrementLoyers, &refMajore)
	if err != nil {
		return model.Annonce{}, err
	}
	a.AuteurUsername = username.String
	a.TypeBien = model.PropertyType(typeBien)
	a.DPELettre = model.EnergyLetter(dpe)
	a.GESLettre = model.EnergyLetter(ges)
	// NULL rent components count as zero.
	a.LoyerBase = loyerBase.Float64
	a.Charges = charges.Float64
	a.DepotGarantie = depot.Float64
	if plan.Valid {
		p := plan.String
		a.Plan = &p
	}
	if refMajore.Valid {
		v := refMajore.Float64
		a.LoyerReferenceMajore = &v
	}
	a.Photos = []string{}
	if photos.Valid && photos.String != "" && photos.String != "null" {
		if err := json.Unmarshal([]byte(photos.String), &a.Photos); err != nil {
			return model.Annonce{}, err
		}
	}
	return a, nil
}

func (r *AnnonceRepo) query(ctx context.Context, op, q string, args ...any) ([]model.Annonce, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, storageError(op, err)
	}
	defer rows.Close()
	out := []model.Annonce{}
	for rows.Next() {
		a, err := scanAnnonce(rows)
		if err != nil {
			return nil, storageError(op, err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError(op, err)
	}
	return out, nil
}

// List returns every listing, newest first.
func (r *AnnonceRepo) List(ctx context.Context) ([]model.Annonce, error) {
	return r.query(ctx, "list annonces", "SELECT "+annonceColumns+" FROM annonces ORDER BY date_creation DESC, id DESC")
}

// Latest returns the n most recent listings.
func (r *AnnonceRepo) Latest(ctx context.Context, n int) ([]model.Annonce, error) {
	return r.query(ctx, "latest annonces", "SELECT "+annonceColumns+" FROM annonces ORDER BY date_creation DESC, id DESC LIMIT ?", n)
}

// GetByID returns a listing or (nil, nil) when it does not exist.
func (r *AnnonceRepo) GetByID(ctx context.Context, id int64) (*model.Annonce, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+annonceColumns+" FROM annonces WHERE id = ?", id)
	a, err := scanAnnonce(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storageError("get annonce", err)
	}
	return &a, nil
}

// Create stamps the creation date, inserts the listing and returns the
// stored record with its generated id.
func (r *AnnonceRepo) Create(ctx context.Context, a model.Annonce) (model.Annonce, error) {
	a.DateCreation = time.Now().UTC()
	if a.Photos == nil {
		a.Photos = []string{}
	}
	photos, err := json.Marshal(a.Photos)
	if err != nil {
		return model.Annonce{}, err
	}
	const q = `INSERT INTO annonces (titre,description,auteur_id,auteur_username,date_creation,type_bien,adresse,ville,
surface,pieces,date_disponibilite,meuble,parking,chauffage,source_energie,dpe_conso,dpe_lettre,ges_emission,
ges_lettre,conso_finale,cout_energie_min,cout_energie_max,date_indexation_energie,photos,plan,loyer_base,
charges,depot_garantie,encadrement_loyers,loyer_reference_majore)
VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`
	res, err := r.db.ExecContext(ctx, q,
		a.Titre, a.Description, a.AuteurID, a.AuteurUsername, a.DateCreation, string(a.TypeBien), a.Adresse, a.Ville,
		a.Surface, a.Pieces, a.DateDisponibilite, a.Meuble, a.Parking, a.Chauffage, a.SourceEnergie, a.DPEConso,
		string(a.DPELettre), a.GESEmission, string(a.GESLettre), a.ConsoFinale, a.CoutEnergieMin, a.CoutEnergieMax,
		a.DateIndexationEnergie, string(photos), a.Plan, a.LoyerBase, a.Charges, a.DepotGarantie,
		a.EncadrementLoyers, a.LoyerReferenceMajore)
	if err != nil {
		return model.Annonce{}, storageError("create annonce", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Annonce{}, err
	}
	a.ID = id
	return a, nil
}
