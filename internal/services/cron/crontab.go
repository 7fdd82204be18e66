package cron

import (
	"fmt"
	"os/exec"
	"strings"
)

// ReadCrontab returns the current user's crontab lines. A missing crontab
// is not an error and yields no lines.
func ReadCrontab() ([]string, error) {
	out, err := exec.Command("crontab", "-l").CombinedOutput()
	if err != nil {
		// "no crontab for <user>" exits non-zero; treat it as empty.
		if strings.Contains(string(out), "no crontab") {
			return nil, nil
		}
		return nil, fmt.Errorf("reading crontab: %w (output: %s)", err, string(out))
	}

	text := strings.TrimRight(string(out), "\n")
	if text == "" {
		return nil, nil
	}
	return strings.Split(text, "\n"), nil
}

// WriteCrontab replaces the current user's crontab with the given lines.
func WriteCrontab(lines []string) error {
	cmd := exec.Command("crontab", "-")
	cmd.Stdin = strings.NewReader(strings.Join(lines, "\n") + "\n")
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("writing crontab: %w (output: %s)", err, string(out))
	}
	return nil
}
