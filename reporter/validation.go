package reporter

import (
	"encoding/json"
	"errors"
	"sync"

	"github.com/TEENet-io/escrow-go/common"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var registerOnce sync.Once

// registerValidators adds the ethaddr and txhash tags to gin's validator.
func registerValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = v.RegisterValidation("ethaddr", func(fl validator.FieldLevel) bool {
			return common.IsHexAddress(fl.Field().String())
		})
		_ = v.RegisterValidation("txhash", func(fl validator.FieldLevel) bool {
			return common.IsTxHash(fl.Field().String())
		})
	})
}

// bindErrorMessage turns a ShouldBindJSON error into the message returned
// with the 400.
func bindErrorMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		switch fe.Tag() {
		case "required":
			return "Missing required fields"
		case "ethaddr":
			if fe.Field() == "ExpectedMintRecipient" {
				return "Invalid expectedMintRecipient"
			}
			return "Invalid Ethereum address format"
		case "txhash":
			return "Valid txHash is required"
		}
		return "invalid field " + fe.Field()
	}

	// raised by common.WalletAddress while decoding
	if errors.Is(err, common.ErrValidation) {
		return "Invalid Ethereum address format"
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &syntaxErr):
		return "invalid JSON body"
	case errors.As(err, &typeErr):
		return "invalid type for field " + typeErr.Field
	}
	return err.Error()
}
