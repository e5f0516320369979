package guard

import (
	"testing"

	"medstudy-be/internal/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestAuthorize(t *testing.T) {
	owner := uuid.New()
	stranger := uuid.New()

	private := &entity.Notebook{Id: uuid.New(), OwnerId: owner}
	public := &entity.Notebook{Id: uuid.New(), OwnerId: owner, IsPublic: true}

	tests := []struct {
		name      string
		record    *entity.Notebook
		requester uuid.UUID
		op        Operation
		want      Decision
	}{
		{"missing record", nil, owner, OpRead, NotFound},
		{"owner reads", private, owner, OpRead, Allowed},
		{"owner writes", private, owner, OpWrite, Allowed},
		{"stranger reads private", private, stranger, OpRead, Forbidden},
		{"stranger writes private", private, stranger, OpWrite, Forbidden},
		{"stranger reads public", public, stranger, OpRead, Allowed},
		{"stranger writes public", public, stranger, OpWrite, Forbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Authorize(tt.record, tt.requester, tt.op))
		})
	}
}

func TestAuthorizeEntry(t *testing.T) {
	owner := uuid.New()
	stranger := uuid.New()

	notebook := &entity.Notebook{Id: uuid.New(), OwnerId: owner}
	entry := &entity.Entry{Id: uuid.New(), NotebookId: notebook.Id, OwnerId: owner}

	assert.Equal(t, NotFound, AuthorizeEntry(nil, notebook, owner, OpRead))
	assert.Equal(t, Allowed, AuthorizeEntry(entry, notebook, owner, OpWrite))
	assert.Equal(t, Forbidden, AuthorizeEntry(entry, notebook, stranger, OpRead))

	t.Run("public notebook opens reads only", func(t *testing.T) {
		public := &entity.Notebook{Id: notebook.Id, OwnerId: owner, IsPublic: true}
		assert.Equal(t, Allowed, AuthorizeEntry(entry, public, stranger, OpRead))
		assert.Equal(t, Forbidden, AuthorizeEntry(entry, public, stranger, OpWrite))
	})

	t.Run("drifted owner follows the notebook", func(t *testing.T) {
		drifted := &entity.Entry{Id: uuid.New(), NotebookId: notebook.Id, OwnerId: stranger}
		assert.Equal(t, owner, EffectiveOwner(drifted, notebook))
		assert.Equal(t, Allowed, AuthorizeEntry(drifted, notebook, owner, OpWrite))
		assert.Equal(t, Forbidden, AuthorizeEntry(drifted, notebook, stranger, OpWrite))
	})

	t.Run("public notebook of another owner does not leak", func(t *testing.T) {
		public := &entity.Notebook{Id: notebook.Id, OwnerId: owner, IsPublic: true}
		foreign := &entity.Entry{Id: uuid.New(), NotebookId: notebook.Id, OwnerId: stranger}
		third := uuid.New()
		assert.Equal(t, Forbidden, AuthorizeEntry(foreign, public, third, OpRead))
	})

	t.Run("orphaned entry falls back to stored owner", func(t *testing.T) {
		assert.Equal(t, Allowed, AuthorizeEntry(entry, nil, owner, OpWrite))
		assert.Equal(t, Forbidden, AuthorizeEntry(entry, nil, stranger, OpRead))
	})
}
