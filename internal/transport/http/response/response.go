package response

import (
	"time"

	"conectar-users/internal/apperror"
)

// Resp is the uniform envelope: status category, message, timestamp and
// payload. Failure responses never carry internal detail.
type Resp struct {
	Code int         `json:"code"`
	Msg  string      `json:"msg"`
	Ts   string      `json:"timestamp"`
	Data interface{} `json:"data"`
}

func New(code int, msg string, data interface{}) Resp {
	if data == nil {
		data = struct{}{}
	}
	return Resp{Code: code, Msg: msg, Ts: time.Now().UTC().Format(time.RFC3339), Data: data}
}

func OK(data interface{}) Resp {
	return New(CodeOK, CodeMsgMap[CodeOK], data)
}

func Error(code int, customMsg string) Resp {
	msg := CodeMsgMap[code]
	if customMsg != "" {
		msg = customMsg
	}
	return New(code, msg, struct{}{})
}

// FromError maps a taxonomy error onto its envelope.
func FromError(err error) Resp {
	return Error(apperror.StatusOf(err), apperror.MessageOf(err))
}
