package layout

// Config carries the per-session display preferences that affect
// layout/command behavior (as opposed to internal/config, which persists
// these across sessions).
type Config struct {
	ShowComments  CommentVisibility
	ShowBinary    bool
	ShowDataTypes bool
	FieldOrder    FieldOrder
}

func DefaultConfig() *Config {
	return &Config{ShowComments: CommentsHidden, FieldOrder: OrderProto}
}
