package mbtichat

// ──────────────────────────────────────────────
// Personality Catalog — static reference data for the 16 types
// ──────────────────────────────────────────────

// PersonalityType is a 4-letter MBTI code (e.g. "INTJ").
// It is used purely as a styling and selection key; unknown codes are
// tolerated everywhere and resolve to zero-value profiles.
type PersonalityType string

// StyleFlags controls local post-processing for a type.
type StyleFlags struct {
	Emphatic bool // append "!" when the reply lacks emphasis
	Emoji    bool // eligible for a random trailing emoji
}

// TypeProfile holds the display metadata and styling attributes for one type.
type TypeProfile struct {
	Code               PersonalityType
	Nickname           string
	Description        string
	CognitiveFunctions string // ordered 4-function stack, e.g. "Ni-Te-Fi-Se (...)"
	Avatar             string
	TraitSummary       string // prompt-facing trait description
	Style              StyleFlags
}

// allTypes is the canonical ordering used for selection and display.
var allTypes = []PersonalityType{
	"INTJ", "INTP", "ENTJ", "ENTP",
	"INFJ", "INFP", "ENFJ", "ENFP",
	"ISTJ", "ISFJ", "ESTJ", "ESFJ",
	"ISTP", "ISFP", "ESTP", "ESFP",
}

// analyticalTypes prefer the retrieval-augmented/alternate provider class
// in the default allocation.
var analyticalTypes = map[PersonalityType]bool{
	"INTJ": true, "INTP": true, "ENTJ": true, "ENTP": true,
	"ISTJ": true, "ESTJ": true, "ISTP": true,
}

var profiles = map[PersonalityType]TypeProfile{
	"INTJ": {
		Code:               "INTJ",
		Nickname:           "The Architect",
		Description:        "Strategic, independent thinkers with a focus on systems and innovation.",
		CognitiveFunctions: "Ni-Te-Fi-Se (Introverted Intuition, Extraverted Thinking, Introverted Feeling, Extraverted Sensing)",
		Avatar:             "🧠",
		TraitSummary:       "strategic, analytical, and independent with a focus on long-term plans and systems thinking",
	},
	"INTP": {
		Code:               "INTP",
		Nickname:           "The Logician",
		Description:        "Logical, analytical minds that enjoy theoretical concepts and possibilities.",
		CognitiveFunctions: "Ti-Ne-Si-Fe (Introverted Thinking, Extraverted Intuition, Introverted Sensing, Extraverted Feeling)",
		Avatar:             "🔬",
		TraitSummary:       "logical, theoretical, and objective with a focus on analyzing concepts and solving complex problems",
	},
	"ENTJ": {
		Code:               "ENTJ",
		Nickname:           "The Commander",
		Description:        "Decisive leaders who organize people and resources to achieve objectives.",
		CognitiveFunctions: "Te-Ni-Se-Fi (Extraverted Thinking, Introverted Intuition, Extraverted Sensing, Introverted Feeling)",
		Avatar:             "👑",
		TraitSummary:       "decisive, organized, and efficient with a focus on leadership and achieving goals",
	},
	"ENTP": {
		Code:               "ENTP",
		Nickname:           "The Debater",
		Description:        "Quick-thinking debaters who enjoy intellectual challenges and possibilities.",
		CognitiveFunctions: "Ne-Ti-Fe-Si (Extraverted Intuition, Introverted Thinking, Extraverted Feeling, Introverted Sensing)",
		Avatar:             "💡",
		TraitSummary:       "innovative, debating, and curious with a focus on exploring possibilities and challenging ideas",
		Style:              StyleFlags{Emphatic: true},
	},
	"INFJ": {
		Code:               "INFJ",
		Nickname:           "The Advocate",
		Description:        "Insightful, principled individuals with a focus on helping others and society.",
		CognitiveFunctions: "Ni-Fe-Ti-Se (Introverted Intuition, Extraverted Feeling, Introverted Thinking, Extraverted Sensing)",
		Avatar:             "🔮",
		TraitSummary:       "insightful, idealistic, and empathetic with a focus on connecting with others and finding meaning",
	},
	"INFP": {
		Code:               "INFP",
		Nickname:           "The Mediator",
		Description:        "Idealistic, authentic individuals who value harmony and personal growth.",
		CognitiveFunctions: "Fi-Ne-Si-Te (Introverted Feeling, Extraverted Intuition, Introverted Sensing, Extraverted Thinking)",
		Avatar:             "🌈",
		TraitSummary:       "compassionate, creative, and authentic with a focus on personal values and helping others",
	},
	"ENFJ": {
		Code:               "ENFJ",
		Nickname:           "The Protagonist",
		Description:        "Charismatic leaders who inspire others and facilitate personal development.",
		CognitiveFunctions: "Fe-Ni-Se-Ti (Extraverted Feeling, Introverted Intuition, Extraverted Sensing, Introverted Thinking)",
		Avatar:             "🌟",
		TraitSummary:       "charismatic, supportive, and inspirational with a focus on bringing out the best in people",
		Style:              StyleFlags{Emphatic: true},
	},
	"ENFP": {
		Code:               "ENFP",
		Nickname:           "The Campaigner",
		Description:        "Enthusiastic, creative people who see possibilities in everything and everyone.",
		CognitiveFunctions: "Ne-Fi-Te-Si (Extraverted Intuition, Introverted Feeling, Extraverted Thinking, Introverted Sensing)",
		Avatar:             "✨",
		TraitSummary:       "enthusiastic, creative, and people-oriented with a focus on possibilities and connections",
		Style:              StyleFlags{Emphatic: true, Emoji: true},
	},
	"ISTJ": {
		Code:               "ISTJ",
		Nickname:           "The Inspector",
		Description:        "Practical, detail-oriented individuals who value tradition and responsibility.",
		CognitiveFunctions: "Si-Te-Fi-Ne (Introverted Sensing, Extraverted Thinking, Introverted Feeling, Extraverted Intuition)",
		Avatar:             "📊",
		TraitSummary:       "practical, reliable, and detail-oriented with a focus on responsibility and tradition",
	},
	"ISFJ": {
		Code:               "ISFJ",
		Nickname:           "The Defender",
		Description:        "Loyal, compassionate people who protect and support those they care about.",
		CognitiveFunctions: "Si-Fe-Ti-Ne (Introverted Sensing, Extraverted Feeling, Introverted Thinking, Extraverted Intuition)",
		Avatar:             "🏡",
		TraitSummary:       "nurturing, detailed, and loyal with a focus on supporting others and maintaining harmony",
	},
	"ESTJ": {
		Code:               "ESTJ",
		Nickname:           "The Executive",
		Description:        "Organized, efficient managers who ensure systems and people operate effectively.",
		CognitiveFunctions: "Te-Si-Ne-Fi (Extraverted Thinking, Introverted Sensing, Extraverted Intuition, Introverted Feeling)",
		Avatar:             "📝",
		TraitSummary:       "organized, practical, and direct with a focus on getting things done efficiently",
	},
	"ESFJ": {
		Code:               "ESFJ",
		Nickname:           "The Consul",
		Description:        "Warm, sociable people who create harmony and take care of practical needs.",
		CognitiveFunctions: "Fe-Si-Ne-Ti (Extraverted Feeling, Introverted Sensing, Extraverted Intuition, Introverted Thinking)",
		Avatar:             "🤝",
		TraitSummary:       "warm, social, and conscientious with a focus on caring for others and maintaining harmony",
	},
	"ISTP": {
		Code:               "ISTP",
		Nickname:           "The Virtuoso",
		Description:        "Hands-on problem solvers who excel in understanding how things work.",
		CognitiveFunctions: "Ti-Se-Ni-Fe (Introverted Thinking, Extraverted Sensing, Introverted Intuition, Extraverted Feeling)",
		Avatar:             "🛠️",
		TraitSummary:       "pragmatic, logical, and adaptable with a focus on understanding systems and solving problems",
	},
	"ISFP": {
		Code:               "ISFP",
		Nickname:           "The Artist",
		Description:        "Gentle, artistic souls who live in the moment and value aesthetic experiences.",
		CognitiveFunctions: "Fi-Se-Ni-Te (Introverted Feeling, Extraverted Sensing, Introverted Intuition, Extraverted Thinking)",
		Avatar:             "🎨",
		TraitSummary:       "sensitive, creative, and present-oriented with a focus on aesthetic experiences and authenticity",
	},
	"ESTP": {
		Code:               "ESTP",
		Nickname:           "The Entrepreneur",
		Description:        "Energetic, practical people who thrive in dynamic situations and love action.",
		CognitiveFunctions: "Se-Ti-Fe-Ni (Extraverted Sensing, Introverted Thinking, Extraverted Feeling, Introverted Intuition)",
		Avatar:             "🏄",
		TraitSummary:       "energetic, practical, and adaptable with a focus on immediate experiences and problem-solving",
	},
	"ESFP": {
		Code:               "ESFP",
		Nickname:           "The Entertainer",
		Description:        "Spontaneous, fun-loving performers who bring joy and energy to others.",
		CognitiveFunctions: "Se-Fi-Te-Ni (Extraverted Sensing, Introverted Feeling, Extraverted Thinking, Introverted Intuition)",
		Avatar:             "🎭",
		TraitSummary:       "spontaneous, enthusiastic, and social with a focus on enjoying life and bringing joy to others",
		Style:              StyleFlags{Emphatic: true, Emoji: true},
	},
}

// AllTypes returns the 16 personality types in canonical order.
func AllTypes() []PersonalityType {
	result := make([]PersonalityType, len(allTypes))
	copy(result, allTypes)
	return result
}

// Profile returns the profile for a type. Unknown codes return the zero
// profile rather than an error, so callers can pass user input through
// without validation.
func Profile(t PersonalityType) TypeProfile {
	return profiles[t]
}

// IsKnownType reports whether t is one of the 16 catalog types.
func IsKnownType(t PersonalityType) bool {
	_, ok := profiles[t]
	return ok
}

// IsAnalytical reports whether t belongs to the analytical group used by the
// default provider allocation.
func IsAnalytical(t PersonalityType) bool {
	return analyticalTypes[t]
}

// TraitSummary returns the prompt-facing trait description for a type.
// Unknown codes get a generic summary so prompt construction never fails.
func TraitSummary(t PersonalityType) string {
	if p, ok := profiles[t]; ok {
		return p.TraitSummary
	}
	return "unique and interesting"
}
