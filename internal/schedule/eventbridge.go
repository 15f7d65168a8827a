package schedule

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/scheduler"
	"github.com/aws/aws-sdk-go-v2/service/scheduler/types"

	appconfig "github.com/ignite/sender-hub/internal/config"
)

// EventBridgeClient implements Client on EventBridge Scheduler. Each poll is
// a uniquely named one-shot schedule that deletes itself after firing, so
// chains of reschedules leave nothing behind.
type EventBridgeClient struct {
	client    *scheduler.Client
	groupName string
	targetArn string
	roleArn   string
	now       func() time.Time
}

// NewEventBridgeClient creates a scheduler client from config.
func NewEventBridgeClient(ctx context.Context, cfg appconfig.SchedulerConfig, region string) (*EventBridgeClient, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	return &EventBridgeClient{
		client:    scheduler.NewFromConfig(awsCfg),
		groupName: cfg.GroupName,
		targetArn: cfg.TargetArn,
		roleArn:   cfg.RoleArn,
		now:       time.Now,
	}, nil
}

// SchedulePoll creates a one-shot schedule that invokes the poll endpoint
// with the task payload after the given delay.
func (c *EventBridgeClient) SchedulePoll(ctx context.Context, task PollTask, delay time.Duration) error {
	payload, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("marshaling poll task: %w", err)
	}

	now := c.now()
	runAt := now.Add(delay).UTC()
	// Schedule names must be unique within the group while the schedule
	// lives; sender id plus creation nanos is enough.
	name := fmt.Sprintf("poll-%s-%d", task.SenderID, now.UnixNano())

	_, err = c.client.CreateSchedule(ctx, &scheduler.CreateScheduleInput{
		Name:                       aws.String(name),
		GroupName:                  aws.String(c.groupName),
		ScheduleExpression:         aws.String(fmt.Sprintf("at(%s)", runAt.Format("2006-01-02T15:04:05"))),
		ScheduleExpressionTimezone: aws.String("UTC"),
		ActionAfterCompletion:      types.ActionAfterCompletionDelete,
		FlexibleTimeWindow: &types.FlexibleTimeWindow{
			Mode: types.FlexibleTimeWindowModeOff,
		},
		Target: &types.Target{
			Arn:     aws.String(c.targetArn),
			RoleArn: aws.String(c.roleArn),
			Input:   aws.String(string(payload)),
		},
	})
	if err != nil {
		return fmt.Errorf("creating poll schedule %s: %w", name, err)
	}
	return nil
}
