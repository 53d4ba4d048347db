package ai

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/iliyamo/colocetudiant/internal/model"
)

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

func num(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }

// DescribePrompt renders the ad-writing prompt for a listing draft.
func DescribePrompt(a model.Annonce) string {
	var b strings.Builder
	b.WriteString("Write a compelling and attractive real estate ad description (max 150 words) in French based on these details:\n\n")
	fmt.Fprintf(&b, "Type: %s\n", a.TypeBien)
	fmt.Fprintf(&b, "City: %s\n", a.Ville)
	fmt.Fprintf(&b, "Surface: %s m2\n", num(a.Surface))
	fmt.Fprintf(&b, "Rooms: %d\n", a.Pieces)
	fmt.Fprintf(&b, "Furnished: %s\n", yesNo(a.Meuble))
	fmt.Fprintf(&b, "Heating: %s (%s)\n", a.Chauffage, a.SourceEnergie)
	fmt.Fprintf(&b, "DPE Rating: %s\n", a.DPELettre)
	fmt.Fprintf(&b, "Rent: %s€ + %s€ charges\n", num(a.LoyerBase), num(a.Charges))
	fmt.Fprintf(&b, "Availability: %s\n\n", a.DateDisponibilite)
	b.WriteString("Focus on the lifestyle, the benefits of the energy rating if good, and the convenience.")
	return b.String()
}

// MatchPrompt renders the compatibility prompt comparing a listing
// description with a roommate profile.
func MatchPrompt(description string, p model.Profile) string {
	var b strings.Builder
	b.WriteString("Act as a roommate matchmaker. Compare the following ad description with the user profile.\n\n")
	fmt.Fprintf(&b, "Ad Description: %q\n\n", description)
	b.WriteString("User Profile:\n")
	fmt.Fprintf(&b, "- Budget: %s€\n", num(p.Budget))
	fmt.Fprintf(&b, "- Smoker: %s\n", yesNo(p.IsSmoker))
	fmt.Fprintf(&b, "- Pets: %s\n", yesNo(p.HasPets))
	fmt.Fprintf(&b, "- Cleanliness: %s\n", p.Cleanliness)
	fmt.Fprintf(&b, "- Social Vibe: %s\n", p.SocialVibe)
	fmt.Fprintf(&b, "- Bio: %q\n\n", p.Bio)
	b.WriteString("Return a JSON object with:\n")
	b.WriteString(`1. "score": a number between 0 and 100 representing compatibility.` + "\n")
	b.WriteString(`2. "reason": a concise sentence explaining why (in French).` + "\n\n")
	b.WriteString(`Example: {"score": 85, "reason": "Le budget correspond et l'ambiance calme convient à votre profil."}` + "\n")
	b.WriteString("Only return the JSON.")
	return b.String()
}
