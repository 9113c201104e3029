package messages

import "errors"

var (
	// ErrThreadAlreadyExists диалог по заказу уже создан
	ErrThreadAlreadyExists = errors.New("Диалог уже создан")

	// ErrThreadNotFound диалог не найден
	ErrThreadNotFound = errors.New("Диалог не найден")

	// ErrMessageNotFound сообщение не найдено либо принадлежит другому отправителю
	ErrMessageNotFound = errors.New("Сообщение не найдено")
)

// ThreadError нарушение условий работы с диалогом (не участник и т.п.)
type ThreadError struct {
	Message string
}

func (e *ThreadError) Error() string {
	return e.Message
}
