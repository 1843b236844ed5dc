package rules

import "github.com/nlpforge/gobart/internal/pattern"

// Multi-word preposition lexicons used by the eudpp collapsing rules.
// Entries are lowercase word n-grams joined by "_", matching the tuple
// constraint encoding.

var twoWordPreps = pattern.WordSet(
	"according_to",
	"ahead_of",
	"along_with",
	"apart_from",
	"as_for",
	"as_of",
	"aside_from",
	"away_from",
	"based_on",
	"because_of",
	"close_to",
	"contrary_to",
	"due_to",
	"except_for",
	"instead_of",
	"next_to",
	"out_of",
	"outside_of",
	"prior_to",
	"pursuant_to",
	"regardless_of",
	"such_as",
	"thanks_to",
	"together_with",
)

var threeWordPreps = pattern.WordSet(
	"by_means_of",
	"in_accordance_with",
	"in_addition_to",
	"in_case_of",
	"in_front_of",
	"in_lieu_of",
	"in_place_of",
	"in_spite_of",
	"on_account_of",
	"on_behalf_of",
	"on_top_of",
	"with_regard_to",
	"with_respect_to",
)
