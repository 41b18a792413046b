// Copyright 2025 UMH Systems GmbH
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package sentry

import (
	"fmt"

	"github.com/getsentry/sentry-go"
	"go.uber.org/zap"
)

type IssueType string

const (
	IssueTypeWarning IssueType = "warning"
	IssueTypeError   IssueType = "error"
	IssueTypeFatal   IssueType = "fatal"
)

func ReportIssue(err error, issueType IssueType, log *zap.SugaredLogger) {
	ReportIssueWithContext(err, issueType, log, nil)
}

func ReportIssuef(issueType IssueType, log *zap.SugaredLogger, template string, args ...interface{}) {
	ReportIssue(fmt.Errorf(template, args...), issueType, log)
}

// ReportIssueWithContext logs the issue and sends it to Sentry with the context attached as tags.
// The log line is written through the raw core so the Sentry zap hook does not report it twice.
func ReportIssueWithContext(err error, issueType IssueType, log *zap.SugaredLogger, context map[string]interface{}) {
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	var level sentry.Level

	switch issueType {
	case IssueTypeFatal:
		level = sentry.LevelFatal
	case IssueTypeWarning:
		level = sentry.LevelWarning
	default:
		level = sentry.LevelError
	}

	quiet := log.Desugar().WithOptions(zap.WrapCore(unwrapHook)).Sugar()
	switch issueType {
	case IssueTypeWarning:
		quiet.Warnw(err.Error(), "issue_type", string(issueType))
	default:
		quiet.Errorw(err.Error(), "issue_type", string(issueType))
	}

	if hub := sentry.CurrentHub(); hub.Client() != nil {
		hub.CaptureEvent(createSentryEvent(level, err, context))
	}
}

// ReportFSMErrorf formats an FSM-related error message and reports it with proper context.
func ReportFSMErrorf(log *zap.SugaredLogger, instanceID string, fsmType string, operation string, template string, args ...interface{}) {
	context := map[string]interface{}{
		"instance_id": instanceID,
		"fsm_type":    fsmType,
		"operation":   operation,
	}
	ReportIssueWithContext(fmt.Errorf(template, args...), IssueTypeError, log, context)
}

// ReportServiceErrorf formats a service-related error message and reports it with proper context.
func ReportServiceErrorf(log *zap.SugaredLogger, serviceID string, serviceType string, operation string, template string, args ...interface{}) {
	context := map[string]interface{}{
		"service_id":   serviceID,
		"service_type": serviceType,
		"operation":    operation,
	}
	ReportIssueWithContext(fmt.Errorf(template, args...), IssueTypeError, log, context)
}
