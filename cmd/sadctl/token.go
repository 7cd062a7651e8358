package main

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"sad/backend/internal/model"
	"sad/backend/pkg/jwt"
)

// tokenInfo what decode and verify print.
type tokenInfo struct {
	Algorithm string      `json:"alg,omitempty"`
	Valid     *bool       `json:"valid,omitempty"`
	Expired   bool        `json:"expired"`
	ExpiresAt *time.Time  `json:"expires_at,omitempty"`
	Claims    *jwt.Claims `json:"claims"`
}

func describeToken(claims *jwt.Claims, alg string, now time.Time) tokenInfo {
	info := tokenInfo{Algorithm: alg, Claims: claims}
	if claims.ExpiresAt != nil {
		exp := claims.ExpiresAt.Time
		info.ExpiresAt = &exp
		info.Expired = !exp.After(now)
	}
	return info
}

func newTokenCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Inspect and issue JWTs",
	}

	decode := &cobra.Command{
		Use:   "decode TOKEN",
		Short: "Print the claims without checking the signature",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			claims, alg, err := jwt.Decode(args[0])
			if err != nil {
				return err
			}
			return printJSON(describeToken(claims, alg, time.Now()))
		},
	}

	verify := &cobra.Command{
		Use:   "verify TOKEN",
		Short: "Check the signature and expiry with the configured secret",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := e.loadConfig(); err != nil {
				return err
			}
			claims, err := jwt.NewManager(&e.cfg.Auth).ParseToken(args[0])
			valid := err == nil
			if err != nil {
				// still show what the token says
				decoded, alg, decErr := jwt.Decode(args[0])
				if decErr != nil {
					return err
				}
				info := describeToken(decoded, alg, time.Now())
				info.Valid = &valid
				if printErr := printJSON(info); printErr != nil {
					return printErr
				}
				return err
			}
			info := describeToken(claims, "", time.Now())
			info.Valid = &valid
			return printJSON(info)
		},
	}

	var (
		userID, role, workerID string
		serviceKey             string
		refresh, remember      bool
	)
	issue := &cobra.Command{
		Use:   "issue",
		Short: "Sign a token for manual API testing",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := validateIssue(userID, role, workerID); err != nil {
				return err
			}
			if err := e.loadConfig(); err != nil {
				return err
			}
			if err := checkServiceKey(e.cfg.Auth.ServiceKey, serviceKey); err != nil {
				return err
			}
			mgr := jwt.NewManager(&e.cfg.Auth)

			var (
				token string
				err   error
			)
			if refresh {
				token, err = mgr.GenerateRefreshToken(userID, role, workerID, remember)
			} else {
				token, err = mgr.GenerateAccessToken(userID, role, workerID)
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	issue.Flags().StringVar(&userID, "user", "", "auth user id (required)")
	issue.Flags().StringVar(&role, "role", model.RoleAdmin, "super_admin, admin or worker")
	issue.Flags().StringVar(&workerID, "worker", "", "worker id, required for the worker role")
	issue.Flags().StringVar(&serviceKey, "service-key", "", "must match auth.service_key when one is configured")
	issue.Flags().BoolVar(&refresh, "refresh", false, "issue a refresh token instead of an access token")
	issue.Flags().BoolVar(&remember, "remember", false, "use the remember-me lifetime (refresh only)")

	cmd.AddCommand(decode, verify, issue)
	return cmd
}

// checkServiceKey guards token minting once an operator sets auth.service_key.
func checkServiceKey(configured, given string) error {
	if configured == "" {
		return nil
	}
	if subtle.ConstantTimeCompare([]byte(configured), []byte(given)) != 1 {
		return errors.New("--service-key does not match auth.service_key")
	}
	return nil
}

func validateIssue(userID, role, workerID string) error {
	if userID == "" {
		return errors.New("--user is required")
	}
	switch role {
	case model.RoleSuperAdmin, model.RoleAdmin:
	case model.RoleWorker:
		if workerID == "" {
			return errors.New("--worker is required for the worker role")
		}
	default:
		return fmt.Errorf("unknown role %q", role)
	}
	return nil
}
