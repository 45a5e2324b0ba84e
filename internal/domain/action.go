package domain

// ActionKind is the closed set of intents an assistant reply can declare.
// The dispatcher treats anything outside this set as a plain message.
type ActionKind string

const (
	ActionNone                     ActionKind = ""
	ActionSearch                   ActionKind = "search"
	ActionBookmark                 ActionKind = "bookmark"
	ActionSearchAndBookmark        ActionKind = "search_and_bookmark"
	ActionCollection               ActionKind = "collection"
	ActionSearchBookmarkCollection ActionKind = "search_bookmark_collection"
	ActionShowBookmark             ActionKind = "show_bookmark"
	ActionShowCollection           ActionKind = "show_collection"
)

// Known reports whether the action is part of the closed enumeration.
func (a ActionKind) Known() bool {
	switch a {
	case ActionSearch, ActionBookmark, ActionSearchAndBookmark,
		ActionCollection, ActionSearchBookmarkCollection,
		ActionShowBookmark, ActionShowCollection:
		return true
	}
	return false
}

// AssistantResponse is the reply shape produced by the external chat
// collaborator. Products carried here are raw until normalized.
type AssistantResponse struct {
	Message         string     `json:"message"`
	Action          ActionKind `json:"action"`
	Products        []Product  `json:"products,omitempty"`
	Error           bool       `json:"error,omitempty"`
	CollectionName  string     `json:"collectionName,omitempty"`
	ShowCollections bool       `json:"showCollections,omitempty"`
	ShowBookmarks   bool       `json:"showBookmarks,omitempty"`
}
