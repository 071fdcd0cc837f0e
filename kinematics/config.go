package kinematics

import (
	"encoding/json"
	"math"
	"os"

	"github.com/go-viper/mapstructure/v2"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"go.viam.com/armcore/spatialmath"
	"go.viam.com/armcore/utils"
)

// ErrNoChainInformation is used when there is no chain information.
var ErrNoChainInformation = errors.New("no chain information")

// TransformConfig describes a fixed offset either as a translation plus axis-angle, or as 16 row-major values.
type TransformConfig struct {
	X           float64           `json:"x" mapstructure:"x"`
	Y           float64           `json:"y" mapstructure:"y"`
	Z           float64           `json:"z" mapstructure:"z"`
	Orientation *spatialmath.R4AA `json:"orientation,omitempty" mapstructure:"orientation"`
	Matrix      []float64         `json:"matrix,omitempty" mapstructure:"matrix"`
}

// LinkConfig describes one DH link. Unset limits are unbounded.
type LinkConfig struct {
	Name              string   `json:"name" mapstructure:"name"`
	Type              string   `json:"type" mapstructure:"type"`
	A                 float64  `json:"a" mapstructure:"a"`
	Alpha             float64  `json:"alpha" mapstructure:"alpha"`
	D                 float64  `json:"d" mapstructure:"d"`
	Theta             float64  `json:"theta" mapstructure:"theta"`
	Robot2DHOffset    float64  `json:"robot2dh_offset" mapstructure:"robot2dh_offset"`
	Robot2DHFlip      bool     `json:"robot2dh_flip" mapstructure:"robot2dh_flip"`
	Min               *float64 `json:"min,omitempty" mapstructure:"min"`
	Max               *float64 `json:"max,omitempty" mapstructure:"max"`
	VelocityLimit     *float64 `json:"velocity_limit,omitempty" mapstructure:"velocity_limit"`
	SoftVelocityLimit *float64 `json:"soft_velocity_limit,omitempty" mapstructure:"soft_velocity_limit"`
}

// ChainConfig represents all supported fields of a chain description.
// When AnglesInDegrees is set, alpha, theta, offset orientations and the offsets, limits and velocity
// limits of revolute joints are read in degrees.
type ChainConfig struct {
	Name                    string           `json:"name" mapstructure:"name"`
	Model                   string           `json:"model,omitempty" mapstructure:"model"`
	AnglesInDegrees         bool             `json:"angles_in_degrees,omitempty" mapstructure:"angles_in_degrees"`
	Base                    *TransformConfig `json:"base,omitempty" mapstructure:"base"`
	Tool                    *TransformConfig `json:"tool,omitempty" mapstructure:"tool"`
	DLSJointSpeedSaturation float64          `json:"dls_joint_speed_saturation,omitempty" mapstructure:"dls_joint_speed_saturation"`
	Links                   []LinkConfig     `json:"links" mapstructure:"links"`
}

// UnmarshalChainJSON parses the given JSON data into a chain. name overrides the name in the data when not empty.
func UnmarshalChainJSON(jsonData []byte, name string) (*Chain, error) {
	// empty data probably means that the robot has no kinematic information
	if len(jsonData) == 0 {
		return nil, ErrNoChainInformation
	}
	cfg := &ChainConfig{}
	if err := json.Unmarshal(jsonData, cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal json file")
	}
	return cfg.ParseConfig(name)
}

// ParseChainJSONFile will read a given file and then parse the contained JSON data.
func ParseChainJSONFile(filename, name string) (*Chain, error) {
	//nolint:gosec
	jsonData, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read json file")
	}
	return UnmarshalChainJSON(jsonData, name)
}

// ChainConfigFromAttributes decodes a chain description from a generic attribute map.
func ChainConfigFromAttributes(attributes map[string]interface{}) (*ChainConfig, error) {
	if len(attributes) == 0 {
		return nil, ErrNoChainInformation
	}
	cfg := &ChainConfig{}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(attributes); err != nil {
		return nil, errors.Wrap(err, "failed to decode chain attributes")
	}
	return cfg, nil
}

// ParseConfig converts the config into a Chain. name overrides cfg.Name when not empty.
func (cfg *ChainConfig) ParseConfig(name string) (*Chain, error) {
	if name == "" {
		name = cfg.Name
	}
	angle := func(v float64) float64 {
		if cfg.AnglesInDegrees {
			return utils.DegToRad(v)
		}
		return v
	}

	var err error
	bT0, tErr := cfg.Base.toTransform(angle)
	if tErr != nil {
		err = multierr.Append(err, errors.Wrap(tErr, "base"))
	}
	nTe, tErr := cfg.Tool.toTransform(angle)
	if tErr != nil {
		err = multierr.Append(err, errors.Wrap(tErr, "tool"))
	}

	links := make([]Link, 0, len(cfg.Links))
	for i, lc := range cfg.Links {
		l, lErr := lc.toLink(angle)
		if lErr != nil {
			err = multierr.Append(err, errors.Wrapf(lErr, "link %d", i))
			continue
		}
		links = append(links, l)
	}
	if err != nil {
		return nil, err
	}

	sat := cfg.DLSJointSpeedSaturation
	if sat == 0 {
		sat = DefaultDLSJointSpeedSaturation
	}
	chain, err := NewChain(name, bT0, nTe, sat, links...)
	if err != nil {
		return nil, err
	}
	chain.SetModel(cfg.Model)
	return chain, nil
}

func (tc *TransformConfig) toTransform(angle func(float64) float64) (spatialmath.Transform, error) {
	if tc == nil {
		return spatialmath.IdentityTransform(), nil
	}
	if len(tc.Matrix) > 0 {
		return spatialmath.NewTransformFromSlice(tc.Matrix)
	}
	q := spatialmath.QuatIdentity()
	if tc.Orientation != nil {
		aa := *tc.Orientation
		aa.Theta = angle(aa.Theta)
		var err error
		if q, err = aa.ToQuat(); err != nil {
			return spatialmath.Transform{}, err
		}
	}
	return spatialmath.NewTransformFromQuat(q, r3.Vector{X: tc.X, Y: tc.Y, Z: tc.Z}), nil
}

func (lc *LinkConfig) toLink(angle func(float64) float64) (Link, error) {
	jt, err := ParseJointType(lc.Type)
	if err != nil {
		return Link{}, err
	}
	jointValue := func(v float64) float64 { return v }
	if jt == RevoluteJoint {
		jointValue = angle
	}

	opts := []LinkOption{WithRobot2DH(jointValue(lc.Robot2DHOffset), lc.Robot2DHFlip)}
	if lc.Name != "" {
		opts = append(opts, WithName(lc.Name))
	}
	lower, higher := math.Inf(-1), math.Inf(1)
	if lc.Min != nil {
		lower = jointValue(*lc.Min)
	}
	if lc.Max != nil {
		higher = jointValue(*lc.Max)
	}
	opts = append(opts, WithLimits(lower, higher))
	if lc.VelocityLimit != nil {
		opts = append(opts, WithVelocityLimit(jointValue(*lc.VelocityLimit)))
	}
	if lc.SoftVelocityLimit != nil {
		opts = append(opts, WithSoftVelocityLimit(jointValue(*lc.SoftVelocityLimit)))
	}

	if jt == PrismaticJoint {
		return NewPrismaticLink(lc.A, angle(lc.Alpha), angle(lc.Theta), opts...)
	}
	return NewRevoluteLink(lc.A, angle(lc.Alpha), lc.D, opts...)
}
