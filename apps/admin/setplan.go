package main

import (
	"context"
	"time"

	"github.com/appredator/backend/core/plan"
)

func (cli *commandLine) setPlan(student, planName string) error {
	ctx := context.Background()
	if !plan.KnownPlan(planName) {
		return plan.ErrUnknownPlan
	}

	usr, err := cli.usrRepo.GetUserByUsernameOrEmail(ctx, student)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	_, err = cli.planRepo.UpsertSubscription(ctx, plan.Subscription{
		StudentID: usr.ID,
		Plan:      planName,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	})
	return err
}
