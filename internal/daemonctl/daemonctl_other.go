//go:build !unix

package daemonctl

import "errors"

func (p PrivilegeDrop) apply() error {
	if p.ChrootDir == "" && p.Username == "" && p.Groupname == "" {
		return nil
	}
	return errors.New("daemonctl: chroot/privilege drop is not supported on this platform")
}
