package models

// RSVP is a guest's attendance answer.
type RSVP string

const (
	RSVPYes RSVP = "yes"
	RSVPNo  RSVP = "no"
)

// Valid reports whether r is an accepted answer.
func (r RSVP) Valid() bool {
	return r == RSVPYes || r == RSVPNo
}

// Guest is an invited person. ID is externally assigned and appears in invitation links.
type Guest struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	RSVP            *RSVP   `json:"rsvp"` // nil until the guest answers
	DrinkPreference *string `json:"drink_preference,omitempty"`
}

// Responded reports whether the guest has answered the RSVP.
func (g Guest) Responded() bool { return g.RSVP != nil }

// DrinkOption is one entry of the drink menu offered on the invitation.
type DrinkOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// DrinkOptions is the menu the invitation client renders. The server stores any string.
var DrinkOptions = []DrinkOption{
	{Value: "wine", Label: "Вино"},
	{Value: "beer", Label: "Бира"},
	{Value: "cocktail", Label: "Коктейл"},
	{Value: "vodka", Label: "Водка"},
	{Value: "whiskey", Label: "Уиски"},
	{Value: "tequila", Label: "Текила"},
	{Value: "rakia", Label: "Ракия"},
	{Value: "gin", Label: "Джин"},
	{Value: "non-alcoholic", Label: "Безалкохолно"},
}
