//go:build !integration

package usecase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"telegram-post-scheduler/internal/domain"
	"telegram-post-scheduler/internal/domain/model"
	"telegram-post-scheduler/internal/usecase"
)

type wizardFixture struct {
	states    *MockWizardStateRepo
	schedules *MockScheduleRepo
	bindings  *MockBindingRepo
	uc        usecase.WizardUseCase
}

func newWizardFixture() *wizardFixture {
	f := &wizardFixture{
		states:    NewMockWizardStateRepo(),
		schedules: NewMockScheduleRepo(),
		bindings:  NewMockBindingRepo(),
	}
	f.uc = usecase.NewWizardUseCase(f.states, f.schedules, f.bindings, NewMockTxManager(), newTestLogger())
	return f
}

func (f *wizardFixture) selectChat(t *testing.T, userID, chatID int64) {
	t.Helper()
	f.bindings.Bind(userID, chatID, "Group")
	require.NoError(t, f.states.Set(context.Background(), userID, model.WizardSession{}.Select(chatID, "Group")))
}

func TestWizardUseCase_NewFlow(t *testing.T) {
	ctx := context.Background()
	f := newWizardFixture()
	f.selectChat(t, 42, -100)

	reply, err := f.uc.StartNew(ctx, 42, model.ContentText)
	require.NoError(t, err)
	assert.Equal(t, []string{"prompt_new_text"}, reply.Prompts)

	reply, err = f.uc.Receive(ctx, 42, model.ContentItem{Type: model.ContentText, Data: "hello"})
	require.NoError(t, err)
	assert.Equal(t, []string{"success_schedule_created", "prompt_interval"}, reply.Prompts)
	require.Equal(t, 1, f.schedules.Len())

	w, _ := f.states.Get(ctx, 42)
	require.Equal(t, model.SceneCaptureInterval, w.Scene)
	doc := f.schedules.Get(w.DocIDForWizard)
	require.NotNil(t, doc)
	assert.False(t, doc.IsActive)
	assert.False(t, doc.HasInterval())
	assert.Equal(t, 0, doc.CurrentIndex)
	assert.Equal(t, int64(-100), doc.ChatID)
	assert.Equal(t, int64(42), doc.OwnerUserID)

	t.Run("invalid interval re-prompts and keeps the scene", func(t *testing.T) {
		_, err := f.uc.Receive(ctx, 42, model.ContentItem{Type: model.ContentText, Data: "2s"})
		assert.Equal(t, model.ReasonIntervalMinimum, domain.ValidationReason(err))
		again, _ := f.states.Get(ctx, 42)
		assert.Equal(t, model.SceneCaptureInterval, again.Scene)
	})

	reply, err = f.uc.Receive(ctx, 42, model.ContentItem{Type: model.ContentText, Data: "10s"})
	require.NoError(t, err)
	require.NotNil(t, reply.Offer)
	assert.Equal(t, doc.ID, reply.Offer.DocID)
	assert.Equal(t, "10s", reply.Offer.Token)

	doc = f.schedules.Get(doc.ID)
	assert.Equal(t, 10, doc.Interval())
	assert.False(t, doc.IsActive)

	w, _ = f.states.Get(ctx, 42)
	assert.Equal(t, model.SceneIdle, w.Scene)
	assert.Equal(t, int64(-100), w.SelectedChatID)
}

func TestWizardUseCase_AddFlow(t *testing.T) {
	ctx := context.Background()

	t.Run("appends to the existing document", func(t *testing.T) {
		f := newWizardFixture()
		f.selectChat(t, 42, -100)
		f.schedules.Seed(textSchedule("doc-1", -100, "a"))

		reply, err := f.uc.StartAdd(ctx, 42, "doc-1")
		require.NoError(t, err)
		assert.Equal(t, []string{"prompt_add_text"}, reply.Prompts)

		_, err = f.uc.Receive(ctx, 42, model.ContentItem{Type: model.ContentPhoto, Data: "file"})
		assert.Equal(t, model.ReasonWrongContent, domain.ValidationReason(err))

		reply, err = f.uc.Receive(ctx, 42, model.ContentItem{Type: model.ContentText, Data: "b"})
		require.NoError(t, err)
		assert.Equal(t, []string{"success_content_added"}, reply.Prompts)

		doc := f.schedules.Get("doc-1")
		require.Len(t, doc.ContentItems, 2)
		assert.Equal(t, "b", doc.ContentItems[1].Data)
		assert.Equal(t, 1, f.schedules.Len())
	})

	t.Run("needs a selected chat", func(t *testing.T) {
		f := newWizardFixture()
		f.bindings.Bind(42, -100, "Group")
		f.schedules.Seed(textSchedule("doc-1", -100, "a"))

		_, err := f.uc.StartAdd(ctx, 42, "doc-1")
		assert.ErrorIs(t, err, domain.ErrNoChatSelected)
		w, _ := f.states.Get(ctx, 42)
		assert.Equal(t, model.SceneIdle, w.Scene)
	})

	t.Run("foreign document is not found", func(t *testing.T) {
		f := newWizardFixture()
		f.selectChat(t, 42, -100)
		f.schedules.Seed(textSchedule("doc-x", -999, "a"))

		_, err := f.uc.StartAdd(ctx, 42, "doc-x")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestWizardUseCase_Idle(t *testing.T) {
	ctx := context.Background()
	f := newWizardFixture()

	reply, err := f.uc.Receive(ctx, 42, model.ContentItem{Type: model.ContentText, Data: "hi"})
	require.NoError(t, err)
	assert.False(t, reply.Handled)

	_, err = f.uc.StartNew(ctx, 42, model.ContentPhoto)
	assert.ErrorIs(t, err, domain.ErrNoChatSelected)

	left, err := f.uc.Leave(ctx, 42)
	require.NoError(t, err)
	assert.False(t, left)
}

func TestWizardUseCase_Leave(t *testing.T) {
	ctx := context.Background()
	f := newWizardFixture()
	f.selectChat(t, 42, -100)

	_, err := f.uc.StartNew(ctx, 42, model.ContentSticker)
	require.NoError(t, err)

	left, err := f.uc.Leave(ctx, 42)
	require.NoError(t, err)
	assert.True(t, left)

	w, _ := f.states.Get(ctx, 42)
	assert.False(t, w.InScene())
	assert.True(t, w.HasSelectedChat())
}

func TestWizardUseCase_UnboundChatAbortsCreate(t *testing.T) {
	ctx := context.Background()
	f := newWizardFixture()
	require.NoError(t, f.states.Set(ctx, 42, model.WizardSession{}.Select(-100, "Group")))

	_, err := f.uc.StartNew(ctx, 42, model.ContentText)
	require.NoError(t, err)

	_, err = f.uc.Receive(ctx, 42, model.ContentItem{Type: model.ContentText, Data: "hello"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, 0, f.schedules.Len())

	w, _ := f.states.Get(ctx, 42)
	assert.Equal(t, model.SceneIdle, w.Scene)
}
