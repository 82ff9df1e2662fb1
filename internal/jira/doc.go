// Package jira provides a small client for the Jira REST API.
//
// Only the endpoints jig needs are covered: JQL search, issue lookup,
// transitions, comments, worklogs and assignment. All requests go to
// /rest/api/latest, which both Jira Cloud and Jira Server/Data Center serve
// with plain-text comment bodies.
//
// # Authentication
//
//   - API token: user login + API token, sent as HTTP Basic
//   - Personal Access Token: sent as a Bearer token
//   - Anonymous: no credentials
//
// # Retries
//
// Connection failures, 429 and 5xx responses are retried with exponential
// backoff. Other non-2xx responses surface as *APIError wrapped in the jig
// error type.
//
// # Usage
//
//	cfg := jira.DefaultConfig()
//	cfg.URL = "https://your-domain.atlassian.net"
//	cfg.Login = "you@example.com"
//	cfg.APIToken = "your-api-token"
//
//	client, err := jira.NewClient(cfg)
//	if err != nil {
//		return err
//	}
//
//	tickets, err := client.SearchIssues(ctx, "assignee = currentUser()")
package jira
