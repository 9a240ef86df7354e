package formatter

import (
	"fmt"

	"github.com/unidoc/unioffice/common/license"
)

// UseOfficeLicense activates the metered unioffice key used by the DOCX and XLSX formatters.
func UseOfficeLicense(key string) error {
	if err := license.SetMeteredKey(key); err != nil {
		return fmt.Errorf("set unioffice license: %w", err)
	}
	return nil
}
