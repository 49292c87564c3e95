package persona

// Trait is one selectable personality label offered by the setup screen.
type Trait struct {
	Label string `json:"label"`
	Color string `json:"color"`
	Gloss string `json:"gloss,omitempty"` // 英文释义，仅用于终端帮助
}

// Seed provides the closed trait vocabulary together with its tag colors.
func Seed() []Trait {
	return []Trait{
		{Label: "친근한", Color: "gold", Gloss: "friendly"},
		{Label: "따듯한", Color: "lime", Gloss: "warm"},
		{Label: "웃긴", Color: "green", Gloss: "funny"},
		{Label: "귀여운", Color: "cyan", Gloss: "cute"},
		{Label: "새침한", Color: "blue", Gloss: "aloof"},
		{Label: "털털한", Color: "orange", Gloss: "easygoing"},
		{Label: "세심한", Color: "purple", Gloss: "attentive"},
		{Label: "긍정적인", Color: "red", Gloss: "positive"},
		{Label: "논리적인", Color: "volcano", Gloss: "logical"},
		{Label: "사랑스러운", Color: "magenta", Gloss: "lovely"},
		{Label: "장난꾸러기", Color: "geekblue", Gloss: "playful"},
		{Label: "진지한", Color: "brown", Gloss: "serious"},
	}
}
