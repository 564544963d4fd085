package ui

// InfoCard is a top-right panel describing one house: title, subtitle and attribution.
// It owns its nodes and updates their text when AppendNodes is called with visible true.
type InfoCard struct {
	panel       *Node
	title       *Node
	subtitle    *Node
	attribution *Node
}

// NewInfoCard creates a card styled by the .card, .card-title, .card-subtitle and
// .card-attribution rules.
func NewInfoCard() *InfoCard {
	return &InfoCard{
		panel:       NewNode("panel", "card", "", ""),
		title:       NewNode("label", "card-title", "", ""),
		subtitle:    NewNode("label", "card-subtitle", "", ""),
		attribution: NewNode("label", "card-attribution", "", ""),
	}
}

// Card holds the text shown in an InfoCard. ui does not depend on the catalog; callers fill it.
type Card struct {
	Title       string
	Subtitle    string
	Attribution string
}

// AppendNodes appends the card nodes to dst when visible is true, after updating labels
// from c. When visible is false, dst is returned unchanged. Call every frame so visibility
// and content stay in sync.
func (in *InfoCard) AppendNodes(dst []*Node, visible bool, c Card) []*Node {
	if !visible {
		return dst
	}
	in.title.Text = c.Title
	in.subtitle.Text = c.Subtitle
	in.attribution.Text = c.Attribution
	if c.Attribution == "" {
		in.attribution.Text = "—"
	}
	return append(dst, in.panel, in.title, in.subtitle, in.attribution)
}
