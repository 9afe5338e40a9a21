package ratings

import "strings"

// Rating ladder - lower number = more restrictive
var ratingOrder = map[string]int{
	"G":     1,
	"PG":    2,
	"PG-13": 3,
	"R":     4,
	"NC-17": 5,
}

// Level returns the restrictiveness level for an MPAA certification.
// Lower numbers are more restrictive. Returns 0 if the rating is unknown.
func Level(certification string) int {
	cert := strings.ToUpper(strings.TrimSpace(certification))
	if cert == "" {
		return 0
	}
	return ratingOrder[cert]
}

// IsAppropriate reports whether content carrying contentRating may play
// alongside a feature carrying featureRating. Unknown or missing ratings
// on either side are always considered appropriate (permissive default).
func IsAppropriate(contentRating, featureRating string) bool {
	contentLevel := Level(contentRating)
	featureLevel := Level(featureRating)
	if contentLevel == 0 || featureLevel == 0 {
		return true
	}
	return contentLevel <= featureLevel
}

// Validate checks whether a rating string is a known MPAA rating. Empty is
// valid and means "no restriction".
func Validate(rating string) bool {
	if strings.TrimSpace(rating) == "" {
		return true
	}
	return Level(rating) != 0
}
