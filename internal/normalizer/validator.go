package normalizer

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"datanorm/internal/models"
)

// Validation errors.
var (
	ErrInvalidDataType  = errors.New("invalid data type: expected *models.RepairDataset or *models.MusicDataset")
	ErrMissingField     = errors.New("missing required field")
	ErrInvalidFieldType = errors.New("field has an unexpected type")
	ErrNilRecord        = errors.New("record is null")
)

// Validator checks that every field the normalizer reads is present.
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a new validator instance.
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their wire names.
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}

		return name
	})

	return &Validator{validate: v}
}

// Validate checks if data meets requirements.
func (v *Validator) Validate(data interface{}) error {
	switch ds := data.(type) {
	case *models.RepairDataset:
		if ds == nil {
			return ErrInvalidDataType
		}

		return v.validateRepairs(ds)
	case *models.MusicDataset:
		if ds == nil {
			return ErrInvalidDataType
		}

		return v.validateMusic(ds)
	default:
		return ErrInvalidDataType
	}
}

func (v *Validator) validateRepairs(ds *models.RepairDataset) error {
	if ds.Works == nil {
		return fmt.Errorf("%w: %s", ErrMissingField, models.RepairsRootKey)
	}

	for i := range ds.Works {
		if err := v.validate.Struct(&ds.Works[i]); err != nil {
			return recordError(err, fmt.Sprintf("%s[%d]", models.RepairsRootKey, i))
		}
	}

	return nil
}

// recordError turns the first validator failure into a wrapped sentinel
// error naming the offending field, e.g. "reparacoes[3].viatura.matricula".
func recordError(err error, prefix string) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) || len(validationErrs) == 0 {
		return fmt.Errorf("%s: %w", prefix, err)
	}

	fe := validationErrs[0]

	// Namespace starts with the Go type name, e.g. "WorkOrder.nif".
	_, path, _ := strings.Cut(fe.Namespace(), ".")

	return fmt.Errorf("%w: %s.%s", ErrMissingField, prefix, path)
}

func (v *Validator) validateMusic(ds *models.MusicDataset) error {
	if err := v.validate.Struct(ds); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) && len(validationErrs) > 0 {
			return fmt.Errorf("%w: %s", ErrMissingField, validationErrs[0].Field())
		}

		return err
	}

	for i, student := range ds.Students {
		if student == nil {
			return fmt.Errorf("%w: %s[%d]", ErrNilRecord, models.StudentsRootKey, i)
		}

		if err := requireString(student, models.StudentInstrumentField,
			fmt.Sprintf("%s[%d]", models.StudentsRootKey, i)); err != nil {
			return err
		}
	}

	for i, course := range ds.Courses {
		if course == nil {
			return fmt.Errorf("%w: %s[%d]", ErrNilRecord, models.CoursesRootKey, i)
		}
	}

	for i, instrument := range ds.Instruments {
		prefix := fmt.Sprintf("%s[%d]", models.InstrumentsRootKey, i)

		if instrument == nil {
			return fmt.Errorf("%w: %s", ErrNilRecord, prefix)
		}

		if _, ok := instrument.Get(models.InstrumentIDField); !ok {
			return fmt.Errorf("%w: %s.%s", ErrMissingField, prefix, models.InstrumentIDField)
		}

		if err := requireString(instrument, models.InstrumentTextField, prefix); err != nil {
			return err
		}
	}

	return nil
}

func requireString(r *models.Record, field, prefix string) error {
	value, ok := r.Get(field)
	if !ok || value == nil {
		return fmt.Errorf("%w: %s.%s", ErrMissingField, prefix, field)
	}

	if _, isString := value.(string); !isString {
		return fmt.Errorf("%w: %s.%s is %T, want string", ErrInvalidFieldType, prefix, field, value)
	}

	return nil
}
