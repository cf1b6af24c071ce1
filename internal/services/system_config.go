package services

import (
	"strconv"

	"github.com/formgate/formgate/backend/internal/models"
	"gorm.io/gorm"
)

type SystemConfigService struct {
	db *gorm.DB
}

func NewSystemConfigService(db *gorm.DB) *SystemConfigService {
	return &SystemConfigService{db: db}
}

func (s *SystemConfigService) Get(key string) (string, error) {
	var cfg models.SystemConfig
	if err := s.db.Where("config_key = ?", key).First(&cfg).Error; err != nil {
		return "", err
	}
	return cfg.Value, nil
}

func (s *SystemConfigService) GetWithDefault(key, defaultValue string) string {
	value, err := s.Get(key)
	if err != nil {
		return defaultValue
	}
	return value
}

func (s *SystemConfigService) GetInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(s.GetWithDefault(key, strconv.Itoa(defaultValue)))
	if err != nil {
		return defaultValue
	}
	return value
}

func (s *SystemConfigService) Set(key, value string) error {
	var cfg models.SystemConfig
	err := s.db.Where("config_key = ?", key).First(&cfg).Error
	if err == gorm.ErrRecordNotFound {
		cfg = models.SystemConfig{
			Key:   key,
			Value: value,
		}
		return s.db.Create(&cfg).Error
	}
	if err != nil {
		return err
	}
	return s.db.Model(&cfg).Update("value", value).Error
}

func (s *SystemConfigService) GetByGroup(group string) ([]models.SystemConfig, error) {
	var configs []models.SystemConfig
	if err := s.db.Where("`group` = ?", group).Find(&configs).Error; err != nil {
		return nil, err
	}
	return configs, nil
}

type LDAPConfigResponse struct {
	Enabled     bool   `json:"enabled"`
	Host        string `json:"host"`
	Port        int    `json:"port"`
	BaseDN      string `json:"base_dn"`
	BindDN      string `json:"bind_dn"`
	UserFilter  string `json:"user_filter"`
	UseSSL      bool   `json:"use_ssl"`
	PasswordSet bool   `json:"password_set"`
}

func (s *SystemConfigService) GetLDAPConfig() *LDAPConfigResponse {
	return &LDAPConfigResponse{
		Enabled:     s.GetWithDefault("ldap_enabled", "false") == "true",
		Host:        s.GetWithDefault("ldap_host", ""),
		Port:        s.GetInt("ldap_port", 389),
		BaseDN:      s.GetWithDefault("ldap_base_dn", ""),
		BindDN:      s.GetWithDefault("ldap_bind_dn", ""),
		UserFilter:  s.GetWithDefault("ldap_user_filter", "(uid=%s)"),
		UseSSL:      s.GetWithDefault("ldap_use_ssl", "false") == "true",
		PasswordSet: s.GetWithDefault("ldap_bind_password", "") != "",
	}
}

type UpdateLDAPConfigRequest struct {
	Enabled      *bool   `json:"enabled"`
	Host         *string `json:"host"`
	Port         *int    `json:"port"`
	BaseDN       *string `json:"base_dn"`
	BindDN       *string `json:"bind_dn"`
	BindPassword *string `json:"bind_password"`
	UserFilter   *string `json:"user_filter"`
	UseSSL       *bool   `json:"use_ssl"`
}

func (s *SystemConfigService) UpdateLDAPConfig(req *UpdateLDAPConfigRequest) error {
	set := func(key string, value *string) error {
		if value == nil {
			return nil
		}
		return s.Set(key, *value)
	}
	setBool := func(key string, value *bool) error {
		if value == nil {
			return nil
		}
		return s.Set(key, strconv.FormatBool(*value))
	}

	if err := setBool("ldap_enabled", req.Enabled); err != nil {
		return err
	}
	if err := set("ldap_host", req.Host); err != nil {
		return err
	}
	if req.Port != nil {
		if err := s.Set("ldap_port", strconv.Itoa(*req.Port)); err != nil {
			return err
		}
	}
	if err := set("ldap_base_dn", req.BaseDN); err != nil {
		return err
	}
	if err := set("ldap_bind_dn", req.BindDN); err != nil {
		return err
	}
	if err := set("ldap_bind_password", req.BindPassword); err != nil {
		return err
	}
	if err := set("ldap_user_filter", req.UserFilter); err != nil {
		return err
	}
	return setBool("ldap_use_ssl", req.UseSSL)
}

type AuthSessionConfigResponse struct {
	AccessTokenExpireHours  int `json:"access_token_expire_hours"`
	RefreshTokenExpireHours int `json:"refresh_token_expire_hours"`
}

func (s *SystemConfigService) GetAuthSessionConfig() *AuthSessionConfigResponse {
	return &AuthSessionConfigResponse{
		AccessTokenExpireHours:  s.GetInt("auth_access_token_expire_hours", 24),
		RefreshTokenExpireHours: s.GetInt("auth_refresh_token_expire_hours", 720),
	}
}

type UpdateAuthSessionConfigRequest struct {
	AccessTokenExpireHours  *int `json:"access_token_expire_hours" binding:"omitempty,min=1,max=168"`
	RefreshTokenExpireHours *int `json:"refresh_token_expire_hours" binding:"omitempty,min=1,max=8760"`
}

func (s *SystemConfigService) UpdateAuthSessionConfig(req *UpdateAuthSessionConfigRequest) error {
	if req.AccessTokenExpireHours != nil {
		if err := s.Set("auth_access_token_expire_hours", strconv.Itoa(*req.AccessTokenExpireHours)); err != nil {
			return err
		}
	}
	if req.RefreshTokenExpireHours != nil {
		if err := s.Set("auth_refresh_token_expire_hours", strconv.Itoa(*req.RefreshTokenExpireHours)); err != nil {
			return err
		}
	}
	return nil
}
