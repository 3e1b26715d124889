package dbctx

import (
	"context"

	"gorm.io/gorm"
)

// Context is what every repo call receives: the caller's context and,
// when the operation is part of a larger transaction, the GORM handle
// for it. A nil Tx means the repo runs on its own connection.
type Context struct {
	Ctx context.Context
	Tx  *gorm.DB
}
