package site

import (
	"net/http"

	"golang.org/x/text/language"
)

// Labels are the translated strings a page renders.
type Labels struct {
	Lang            string
	Title           string
	Parent          string
	Child           string
	Contract        string
	Difficulty      string
	CorrectPoints   string
	IncorrectPoints string
	PricePerPoint   string
	Save            string
	Summary         string
	Correct         string
	Incorrect       string
	Points          string
	Currency        string
	Recent          string
	Trainer         string
	Time            string
	Result          string
	Seconds         string
	ChooseTrainer   string
	Unknown         string
	Back            string
	Unavailable     string
	Failed          string
	Domains         map[string]string
}

var catalog = map[string]Labels{
	"de": {
		Lang:            "de",
		Title:           "Trainer",
		Parent:          "Eltern",
		Child:           "Kind",
		Contract:        "Vertrag",
		Difficulty:      "Zeit pro Frage (Sekunden)",
		CorrectPoints:   "Punkte für richtige Antworten",
		IncorrectPoints: "Punktabzug für falsche Antworten",
		PricePerPoint:   "Cent pro Punkt",
		Save:            "Speichern",
		Summary:         "Übersicht",
		Correct:         "Richtig",
		Incorrect:       "Falsch",
		Points:          "Punkte",
		Currency:        "Guthaben (€)",
		Recent:          "Letzte Antworten",
		Trainer:         "Trainer",
		Time:            "Zeit",
		Result:          "Ergebnis",
		Seconds:         "Sekunden",
		ChooseTrainer:   "Wähle einen Trainer",
		Unknown:         "Unbekannter Trainer",
		Back:            "Zurück",
		Unavailable:     "Die Frage kann gerade nicht erstellt werden. Bitte versuche es gleich noch einmal.",
		Failed:          "Etwas ist schiefgelaufen.",
		Domains: map[string]string{
			"math":       "Mathe",
			"english":    "Englisch",
			"german":     "Deutsch",
			"history":    "Geschichte",
			"geography":  "Erdkunde",
			"biology":    "Biologie",
			"literature": "Literatur",
		},
	},
	"en": {
		Lang:            "en",
		Title:           "Trainer",
		Parent:          "Parent",
		Child:           "Child",
		Contract:        "Contract",
		Difficulty:      "Time per question (seconds)",
		CorrectPoints:   "Points for a correct answer",
		IncorrectPoints: "Points deducted for a wrong answer",
		PricePerPoint:   "Cents per point",
		Save:            "Save",
		Summary:         "Summary",
		Correct:         "Correct",
		Incorrect:       "Incorrect",
		Points:          "Points",
		Currency:        "Balance (€)",
		Recent:          "Recent answers",
		Trainer:         "Trainer",
		Time:            "Time",
		Result:          "Result",
		Seconds:         "seconds",
		ChooseTrainer:   "Choose a trainer",
		Unknown:         "Unknown trainer",
		Back:            "Back",
		Unavailable:     "The question cannot be generated right now. Please try again shortly.",
		Failed:          "Something went wrong.",
		Domains: map[string]string{
			"math":       "Math",
			"english":    "English",
			"german":     "German",
			"history":    "History",
			"geography":  "Geography",
			"biology":    "Biology",
			"literature": "Literature",
		},
	},
}

// Localizer picks page labels from the Accept-Language header.
type Localizer struct {
	bases   []string
	matcher language.Matcher
}

// NewLocalizer supports the given locales in preference order. Unknown
// locales are ignored; with none left German is used.
func NewLocalizer(locales []string) *Localizer {
	var (
		tags  []language.Tag
		bases []string
	)
	for _, l := range locales {
		tag, err := language.Parse(l)
		if err != nil {
			continue
		}
		base, _ := tag.Base()
		if _, ok := catalog[base.String()]; !ok {
			continue
		}
		tags = append(tags, tag)
		bases = append(bases, base.String())
	}
	if len(tags) == 0 {
		tags = []language.Tag{language.German}
		bases = []string{"de"}
	}
	return &Localizer{bases: bases, matcher: language.NewMatcher(tags)}
}

// Labels returns the labels for the best match of r's Accept-Language.
func (l *Localizer) Labels(r *http.Request) Labels {
	want, _, err := language.ParseAcceptLanguage(r.Header.Get("Accept-Language"))
	if err != nil || len(want) == 0 {
		return catalog[l.bases[0]]
	}
	_, idx, _ := l.matcher.Match(want...)
	return catalog[l.bases[idx]]
}
