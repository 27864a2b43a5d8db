package vm

import "fmt"

type MessageType int

const (
	_ MessageType = iota
	MsgDebug
	MsgError
	MsgMode
	MsgBreak
	MsgHalt
)

func (mt MessageType) String() string {
	switch mt {
	case MsgDebug:
		return "Debug"
	case MsgError:
		return "Error"
	case MsgMode:
		return "Mode"
	case MsgBreak:
		return "Break"
	case MsgHalt:
		return "Halt"
	default:
		return "Unknown"
	}
}

type Message struct {
	Type    MessageType
	PC      uint16
	Message string
}

func NewMessage(mt MessageType, pc uint16, msg string) Message {
	return Message{
		Type:    mt,
		PC:      pc,
		Message: msg,
	}
}

func (m Message) String() string {
	return fmt.Sprintf("[%s] 0x%03x %s", m.Type, m.PC, m.Message)
}
