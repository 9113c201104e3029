package offers

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rajivgeraev/sdelka-api/internal/models"
)

func TestTransitionAllowed(t *testing.T) {
	tests := []struct {
		name    string
		from    models.OfferStatus
		to      models.OfferStatus
		allowed bool
	}{
		{"pending to approved", models.StatusPending, models.StatusApproved, true},
		{"pending to rejected", models.StatusPending, models.StatusRejected, true},
		{"pending to cancelled", models.StatusPending, models.StatusCancelled, true},
		{"pending to processing is a skip", models.StatusPending, models.StatusProcessing, false},
		{"pending to completed is a skip", models.StatusPending, models.StatusCompleted, false},

		{"approved to processing", models.StatusApproved, models.StatusProcessing, true},
		{"approved to rejected", models.StatusApproved, models.StatusRejected, true},
		{"approved to cancelled", models.StatusApproved, models.StatusCancelled, true},
		{"approved to completed is a skip", models.StatusApproved, models.StatusCompleted, false},
		{"approved back to pending", models.StatusApproved, models.StatusPending, false},

		{"processing to completed", models.StatusProcessing, models.StatusCompleted, true},
		{"processing to rejected", models.StatusProcessing, models.StatusRejected, true},
		{"processing to cancelled", models.StatusProcessing, models.StatusCancelled, true},
		{"processing back to approved", models.StatusProcessing, models.StatusApproved, false},

		{"completed is terminal", models.StatusCompleted, models.StatusCancelled, false},
		{"rejected is terminal", models.StatusRejected, models.StatusApproved, false},
		{"cancelled is terminal", models.StatusCancelled, models.StatusPending, false},

		{"same status is not a transition", models.StatusApproved, models.StatusApproved, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, transitionAllowed(tt.from, tt.to))
		})
	}
}

func TestCheckStatusActor_ItemSourced(t *testing.T) {
	itemID := int64(10)
	offer := &models.Offer{
		ID:         1,
		ItemID:     &itemID,
		FromUserID: 100, // покупатель, создатель заказа
		ToUserID:   200, // продавец, владелец товара
	}

	t.Run("продавец управляет рабочими статусами", func(t *testing.T) {
		for _, target := range []models.OfferStatus{models.StatusApproved, models.StatusProcessing, models.StatusRejected} {
			assert.NoError(t, checkStatusActor(offer, target, 200), string(target))
			assert.Error(t, checkStatusActor(offer, target, 100), string(target))
		}
	})

	t.Run("завершает заказ только создатель", func(t *testing.T) {
		assert.NoError(t, checkStatusActor(offer, models.StatusCompleted, 100))
		assert.Error(t, checkStatusActor(offer, models.StatusCompleted, 200))
	})

	t.Run("отменить может любая сторона", func(t *testing.T) {
		assert.NoError(t, checkStatusActor(offer, models.StatusCancelled, 100))
		assert.NoError(t, checkStatusActor(offer, models.StatusCancelled, 200))
	})
}

func TestCheckStatusActor_RequestSourced(t *testing.T) {
	requestID := int64(20)
	offer := &models.Offer{
		ID:         2,
		RequestID:  &requestID,
		FromUserID: 300, // продавец, откликнувшийся на запрос
		ToUserID:   400, // покупатель, автор запроса
	}

	t.Run("исполнителем выступает создатель заказа", func(t *testing.T) {
		for _, target := range []models.OfferStatus{models.StatusApproved, models.StatusProcessing, models.StatusRejected} {
			assert.NoError(t, checkStatusActor(offer, target, 300), string(target))
			assert.Error(t, checkStatusActor(offer, target, 400), string(target))
		}
	})

	t.Run("завершает заказ получатель", func(t *testing.T) {
		assert.NoError(t, checkStatusActor(offer, models.StatusCompleted, 400))
		assert.Error(t, checkStatusActor(offer, models.StatusCompleted, 300))
	})
}

func TestOfferStatus_Terminal(t *testing.T) {
	assert.True(t, models.StatusCompleted.Terminal())
	assert.True(t, models.StatusRejected.Terminal())
	assert.True(t, models.StatusCancelled.Terminal())
	assert.False(t, models.StatusPending.Terminal())
	assert.False(t, models.StatusApproved.Terminal())
	assert.False(t, models.StatusProcessing.Terminal())
}

func TestOfferStatus_Valid(t *testing.T) {
	assert.True(t, models.StatusPending.Valid())
	assert.False(t, models.OfferStatus("SHIPPED").Valid())
	assert.False(t, models.OfferStatus("").Valid())
}
