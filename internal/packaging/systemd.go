package packaging

import (
	"fmt"
	"os"
	"os/exec"
	"os/user"
	"strings"
)

// realSystemdController implements SystemdController using os/exec to call systemctl.
type realSystemdController struct{}

// NewSystemdController returns a SystemdController that calls the real systemctl binary.
func NewSystemdController() SystemdController {
	return &realSystemdController{}
}

func (c *realSystemdController) IsAvailable() bool {
	_, err := exec.LookPath("systemctl")
	return err == nil
}

func (c *realSystemdController) DaemonReload() error {
	return run("systemctl", "daemon-reload")
}

func (c *realSystemdController) Enable(service string) error {
	return run("systemctl", "enable", service)
}

func (c *realSystemdController) Disable(service string) error {
	return run("systemctl", "disable", service)
}

func (c *realSystemdController) Stop(service string) error {
	return run("systemctl", "stop", service)
}

func (c *realSystemdController) IsActive(service string) bool {
	err := exec.Command("systemctl", "is-active", "--quiet", service).Run()
	return err == nil
}

// realRootChecker implements RootChecker using os.Getuid.
type realRootChecker struct{}

// NewRootChecker returns a RootChecker that checks the real process UID.
func NewRootChecker() RootChecker {
	return &realRootChecker{}
}

func (c *realRootChecker) IsRoot() bool {
	return os.Getuid() == 0
}

// realGroupManager implements GroupManager with the OS group database and groupadd.
type realGroupManager struct{}

// NewGroupManager returns a GroupManager backed by the OS.
func NewGroupManager() GroupManager {
	return &realGroupManager{}
}

func (realGroupManager) Exists(name string) bool {
	_, err := user.LookupGroup(name)
	return err == nil
}

func (realGroupManager) Create(name string) error {
	return run("groupadd", "--system", name)
}

func run(name string, args ...string) error {
	output, err := exec.Command(name, args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("packaging: %s %s: %s: %w", name, args[0], strings.TrimSpace(string(output)), err)
	}
	return nil
}
