package lib

import (
	"fmt"
	"math"
)

/* This file implements the structured error model shared by every module of the node */

// ErrorI is the interface all module errors satisfy
type ErrorI interface {
	Code() ErrorCode     // Returns the error code
	Module() ErrorModule // Returns the error module
	error                // Implements the built-in error interface
}

var _ ErrorI = &Error{} // Ensures *Error implements ErrorI

type ErrorCode uint32 // Defines a type for error codes

type ErrorModule string // Defines a type for error modules

// Error is the concrete implementation of ErrorI
type Error struct {
	ECode   ErrorCode   `json:"code"`   // Error code
	EModule ErrorModule `json:"module"` // Error module
	Msg     string      `json:"msg"`    // Error message
}

// NewError() constructs a new Error instance
func NewError(code ErrorCode, module ErrorModule, msg string) *Error {
	return &Error{ECode: code, EModule: module, Msg: msg}
}

// Code() returns the associated error code
func (p *Error) Code() ErrorCode { return p.ECode }

// Module() returns the module field
func (p *Error) Module() ErrorModule { return p.EModule }

// String() calls Error()
func (p *Error) String() string { return p.Error() }

// Error() returns a formatted string including module, code, and message
func (p *Error) Error() string {
	return fmt.Sprintf("\nModule:  %s\nCode:    %d\nMessage: %s", p.EModule, p.ECode, p.Msg)
}

const (
	NoCode ErrorCode = math.MaxUint32

	// Main Module
	MainModule ErrorModule = "main"

	// Main Module Error Codes
	CodeInvalidAddress  ErrorCode = 1
	CodeJSONMarshal     ErrorCode = 2
	CodeJSONUnmarshal   ErrorCode = 3
	CodeStringToBytes   ErrorCode = 4
	CodeWriteFile       ErrorCode = 5
	CodeReadFile        ErrorCode = 6
	CodeInvalidArgument ErrorCode = 7
	CodeLogWrite        ErrorCode = 8
	CodeUnknownPageable ErrorCode = 9

	// Mempool Module
	MempoolModule ErrorModule = "mempool"

	// Mempool Module Error Codes
	CodeInsufficientBalance ErrorCode = 1
	CodeInvalidSeqNumber    ErrorCode = 2
	CodeInvalidUpdate       ErrorCode = 3
	CodeMempoolIsFull       ErrorCode = 4
	CodeTxExpired           ErrorCode = 5
	CodeMaxTxSize           ErrorCode = 6

	// RPC Module
	RPCModule ErrorModule = "rpc"

	// RPC Module Error Codes
	CodeRPCTimeout      ErrorCode = 1
	CodeInvalidParams   ErrorCode = 2
	CodePostRequest     ErrorCode = 3
	CodeGetRequest      ErrorCode = 4
	CodeHttpStatus      ErrorCode = 5
	CodeReadBody        ErrorCode = 6
	CodeWrongProtocolId ErrorCode = 7

	// Network Module
	NetworkModule ErrorModule = "network"

	// Network Module Error Codes
	CodeSubmitTimeout      ErrorCode = 1
	CodeInvalidRPCResponse ErrorCode = 2
	CodePeerRejected       ErrorCode = 3
)

// MAIN MODULE ERRORS BELOW

func ErrInvalidAddress() ErrorI {
	return NewError(CodeInvalidAddress, MainModule, "address is invalid")
}

func ErrJSONMarshal(err error) ErrorI {
	return NewError(CodeJSONMarshal, MainModule, fmt.Sprintf("jsonMarshal() failed with err: %s", err.Error()))
}

func ErrJSONUnmarshal(err error) ErrorI {
	return NewError(CodeJSONUnmarshal, MainModule, fmt.Sprintf("jsonUnmarshal() failed with err: %s", err.Error()))
}

func ErrStringToBytes(err error) ErrorI {
	return NewError(CodeStringToBytes, MainModule, fmt.Sprintf("stringToBytes() failed with err: %s", err.Error()))
}

func ErrWriteFile(err error) ErrorI {
	return NewError(CodeWriteFile, MainModule, fmt.Sprintf("os.WriteFile() failed with err: %s", err.Error()))
}

func ErrReadFile(err error) ErrorI {
	return NewError(CodeReadFile, MainModule, fmt.Sprintf("os.ReadFile() failed with err: %s", err.Error()))
}

func ErrInvalidArgument() ErrorI {
	return NewError(CodeInvalidArgument, MainModule, "the argument is invalid")
}

func ErrUnknownPageable(pageType string) ErrorI {
	return NewError(CodeUnknownPageable, MainModule, fmt.Sprintf("pageable %s is unknown", pageType))
}

func newLogError(err error) ErrorI {
	return NewError(CodeLogWrite, MainModule, fmt.Sprintf("log write failed with err: %s", err.Error()))
}

// MEMPOOL MODULE ERRORS BELOW

func ErrInsufficientBalance() ErrorI {
	return NewError(CodeInsufficientBalance, MempoolModule, "the account cannot afford the transaction")
}

func ErrInvalidSeqNumber(sequence, expected uint64) ErrorI {
	return NewError(CodeInvalidSeqNumber, MempoolModule, fmt.Sprintf("sequence number %d is stale or duplicate (expected >= %d)", sequence, expected))
}

func ErrInvalidUpdate(msg string) ErrorI {
	return NewError(CodeInvalidUpdate, MempoolModule, fmt.Sprintf("mempool indices desynchronized: %s", msg))
}

func ErrMempoolIsFull() ErrorI {
	return NewError(CodeMempoolIsFull, MempoolModule, "the mempool is at capacity")
}

func ErrTxExpired() ErrorI {
	return NewError(CodeTxExpired, MempoolModule, "the transaction expiration is in the past")
}

func ErrMaxTxSize() ErrorI {
	return NewError(CodeMaxTxSize, MempoolModule, "the transaction exceeds the individual size limit")
}
