package models

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DateKeyLayout is the Go layout of the Due_Date partition key (e.g. 20240315).
const DateKeyLayout = "20060102"

var ErrMalformedDueTime = errors.New("malformed due time")

// Task is one row of the child task table: a maintenance action due on a given day.
type Task struct {
	// Keys
	DueDate string  `dynamodbav:"Due_Date" json:"due_date"`
	DueTime DueTime `dynamodbav:"Due_Time" json:"due_time"`

	// Business
	MachineName string `dynamodbav:"Machine_Name" json:"machine_name"`
	TaskName    string `dynamodbav:"Task_Name" json:"task_name"`

	// Flags (0/1)
	Completed int `dynamodbav:"Completed" json:"completed"`
	Active    int `dynamodbav:"Active" json:"active"`
}

// IsOpen reports whether the task is still required today and not done.
func (t Task) IsOpen() bool {
	return t.Completed == 0 && t.Active == 1
}

// DueTime is a time of day stored as HHMM on a 24-hour clock (1430 = 14:30).
type DueTime int

func (d DueTime) Hour() int   { return int(d) / 100 }
func (d DueTime) Minute() int { return int(d) % 100 }

// Valid reports whether d lies in 0..2359 with a real minute component.
func (d DueTime) Valid() bool {
	return d >= 0 && d <= 2359 && d.Minute() < 60
}

// UnmarshalDynamoDBAttributeValue accepts both numeric attributes and numeric
// strings, since older rows were written with Due_Time as a string.
func (d *DueTime) UnmarshalDynamoDBAttributeValue(av types.AttributeValue) error {
	var raw string
	switch v := av.(type) {
	case *types.AttributeValueMemberN:
		raw = v.Value
	case *types.AttributeValueMemberS:
		raw = v.Value
	default:
		return fmt.Errorf("%w: unsupported attribute %T", ErrMalformedDueTime, av)
	}

	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("%w: %q", ErrMalformedDueTime, raw)
	}
	*d = DueTime(n)
	return nil
}

// MarshalDynamoDBAttributeValue always writes Due_Time as a number.
func (d DueTime) MarshalDynamoDBAttributeValue() (types.AttributeValue, error) {
	return &types.AttributeValueMemberN{Value: strconv.Itoa(int(d))}, nil
}
