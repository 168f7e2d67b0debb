//go:build unix

package daemonctl

import (
	"fmt"
	"os/user"
	"strconv"

	"golang.org/x/sys/unix"
)

func (p PrivilegeDrop) apply() error {
	uid, gid := -1, -1

	if p.Groupname != "" {
		g, err := user.LookupGroup(p.Groupname)
		if err != nil {
			return fmt.Errorf("daemonctl: lookup group %q: %w", p.Groupname, err)
		}
		gid, err = strconv.Atoi(g.Gid)
		if err != nil {
			return fmt.Errorf("daemonctl: group %q has non-numeric gid %q: %w", p.Groupname, g.Gid, err)
		}
	}

	if p.Username != "" {
		u, err := user.Lookup(p.Username)
		if err != nil {
			return fmt.Errorf("daemonctl: lookup user %q: %w", p.Username, err)
		}
		uid, err = strconv.Atoi(u.Uid)
		if err != nil {
			return fmt.Errorf("daemonctl: user %q has non-numeric uid %q: %w", p.Username, u.Uid, err)
		}
	}

	if p.ChrootDir != "" {
		if err := unix.Chroot(p.ChrootDir); err != nil {
			return fmt.Errorf("daemonctl: chroot(%q): %w", p.ChrootDir, err)
		}
		if err := unix.Chdir("/"); err != nil {
			return fmt.Errorf("daemonctl: chdir after chroot: %w", err)
		}
	}

	if gid >= 0 {
		if err := unix.Setgid(gid); err != nil {
			return fmt.Errorf("daemonctl: setgid(%d): %w", gid, err)
		}
	}
	if uid >= 0 {
		if err := unix.Setuid(uid); err != nil {
			return fmt.Errorf("daemonctl: setuid(%d): %w", uid, err)
		}
	}
	return nil
}
