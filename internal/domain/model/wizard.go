package model

import (
	"telegram-post-scheduler/internal/domain"
)

// Scene identifies where a user is inside the schedule wizard.
type Scene string

const (
	SceneIdle            Scene = ""
	SceneCaptureContent  Scene = "capture_content"
	SceneCaptureInterval Scene = "capture_interval"
)

// WizardSession is the per-user conversation state persisted between updates.
type WizardSession struct {
	Scene             Scene       `json:"scene,omitempty"`
	SelectedChatID    int64       `json:"selected_chat_id,omitempty"`
	SelectedChatTitle string      `json:"selected_chat_title,omitempty"`
	DocIDForWizard    string      `json:"doc_id_for_wizard,omitempty"`
	SceneDocID        string      `json:"scene_doc_id,omitempty"`
	SceneContentType  ContentType `json:"scene_content_type,omitempty"`
}

func (w WizardSession) HasSelectedChat() bool { return w.SelectedChatID != 0 }

func (w WizardSession) InScene() bool { return w.Scene != SceneIdle }

// Select makes chatID the current management target.
func (w WizardSession) Select(chatID int64, title string) WizardSession {
	w.SelectedChatID = chatID
	w.SelectedChatTitle = title
	return w
}

func (w WizardSession) leave() WizardSession {
	w.Scene = SceneIdle
	w.DocIDForWizard = ""
	w.SceneDocID = ""
	w.SceneContentType = ""
	return w
}

// ---- events ----

type WizardEvent interface{ wizardEvent() }

// EnterNew starts the flow that creates a new schedule of the given type.
type EnterNew struct{ ContentType ContentType }

// EnterAdd starts the flow that appends to an existing schedule.
type EnterAdd struct {
	DocID       string
	ContentType ContentType
}

// ContentReceived carries an inbound message. NewDocID is the id to use if the
// message creates a schedule; callers always supply one so the transition stays pure.
type ContentReceived struct {
	Item     ContentItem
	NewDocID string
}

type Leave struct{}

func (EnterNew) wizardEvent()        {}
func (EnterAdd) wizardEvent()        {}
func (ContentReceived) wizardEvent() {}
func (Leave) wizardEvent()           {}

// ---- effects ----

type Effect interface{ effect() }

type CreateSchedule struct {
	DocID     string
	ChatID    int64
	ChatTitle string
	Item      ContentItem
}

type AppendItem struct {
	DocID string
	Item  ContentItem
}

type SetInterval struct {
	DocID   string
	Seconds int
	Token   string
}

// OfferStart asks the user whether to activate DocID right away.
type OfferStart struct {
	DocID string
	Token string
}

// Prompt sends the translation Key to the user.
type Prompt struct{ Key string }

func (CreateSchedule) effect() {}
func (AppendItem) effect()     {}
func (SetInterval) effect()    {}
func (OfferStart) effect()     {}
func (Prompt) effect()         {}

// Transition applies ev to w. It never performs I/O: persistence and replies are
// returned as effects for the caller to execute. On error the returned session is
// the one to persist (unchanged for validation errors, idle for aborted flows).
func Transition(w WizardSession, ev WizardEvent) (WizardSession, []Effect, error) {
	switch e := ev.(type) {
	case EnterNew:
		if !w.HasSelectedChat() {
			return w.leave(), nil, domain.ErrNoChatSelected
		}
		if !e.ContentType.Valid() {
			return w, nil, domain.ErrInvalidArgument
		}
		w = w.leave()
		w.Scene = SceneCaptureContent
		w.SceneContentType = e.ContentType
		return w, []Effect{Prompt{Key: "prompt_new_" + string(e.ContentType)}}, nil

	case EnterAdd:
		if !w.HasSelectedChat() {
			return w.leave(), nil, domain.ErrNoChatSelected
		}
		if e.DocID == "" || !e.ContentType.Valid() {
			return w, nil, domain.ErrInvalidArgument
		}
		w = w.leave()
		w.Scene = SceneCaptureContent
		w.SceneDocID = e.DocID
		w.SceneContentType = e.ContentType
		return w, []Effect{Prompt{Key: "prompt_add_" + string(e.ContentType)}}, nil

	case ContentReceived:
		switch w.Scene {
		case SceneCaptureContent:
			return captureContent(w, e)
		case SceneCaptureInterval:
			return captureInterval(w, e)
		}
		return w, nil, nil

	case Leave:
		return w.leave(), nil, nil
	}
	return w, nil, domain.ErrInvalidArgument
}

func captureContent(w WizardSession, e ContentReceived) (WizardSession, []Effect, error) {
	if !w.HasSelectedChat() {
		return w.leave(), nil, domain.ErrNoChatSelected
	}
	if e.Item.Type != w.SceneContentType || e.Item.Data == "" {
		return w, nil, domain.NewValidationError(ReasonWrongContent)
	}
	if w.SceneDocID != "" {
		docID := w.SceneDocID
		return w.leave(), []Effect{
			AppendItem{DocID: docID, Item: e.Item},
			Prompt{Key: "success_content_added"},
		}, nil
	}
	if e.NewDocID == "" {
		return w, nil, domain.ErrInvalidArgument
	}
	chatID, title := w.SelectedChatID, w.SelectedChatTitle
	w = w.leave()
	w.Scene = SceneCaptureInterval
	w.DocIDForWizard = e.NewDocID
	return w, []Effect{
		CreateSchedule{DocID: e.NewDocID, ChatID: chatID, ChatTitle: title, Item: e.Item},
		Prompt{Key: "success_schedule_created"},
		Prompt{Key: "prompt_interval"},
	}, nil
}

func captureInterval(w WizardSession, e ContentReceived) (WizardSession, []Effect, error) {
	if e.Item.Type != ContentText {
		return w, nil, domain.NewValidationError(ReasonIntervalFormat)
	}
	seconds, err := ParseInterval(e.Item.Data)
	if err != nil {
		return w, nil, err
	}
	docID := w.DocIDForWizard
	if docID == "" {
		return w.leave(), nil, domain.ErrNotFound
	}
	return w.leave(), []Effect{
		SetInterval{DocID: docID, Seconds: seconds, Token: e.Item.Data},
		OfferStart{DocID: docID, Token: e.Item.Data},
	}, nil
}
