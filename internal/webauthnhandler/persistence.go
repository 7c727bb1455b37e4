package webauthnhandler

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"github.com/go-webauthn/webauthn/protocol"
	"github.com/go-webauthn/webauthn/webauthn"
	"github.com/myrjola/616degrees/internal/errors"
	"log/slog"
)

func (h *WebAuthnHandler) insertUser(ctx context.Context, user webauthn.User) error {
	stmt := `INSERT INTO users (id, display_name) VALUES (?, ?)`
	if _, err := h.dbs.ReadWrite.ExecContext(ctx, stmt, user.WebAuthnID(), user.WebAuthnDisplayName()); err != nil {
		return errors.Wrap(
			err,
			"db insert",
			slog.String("display_name", user.WebAuthnDisplayName()),
			slog.String("user_id", hex.EncodeToString(user.WebAuthnID())),
		)
	}
	return nil
}

type credentialRow struct {
	ID                        []byte `db:"id"`
	PublicKey                 []byte `db:"public_key"`
	AttestationType           string `db:"attestation_type"`
	Transport                 []byte `db:"transport"`
	FlagUserPresent           bool   `db:"flag_user_present"`
	FlagUserVerified          bool   `db:"flag_user_verified"`
	FlagBackupEligible        bool   `db:"flag_backup_eligible"`
	FlagBackupState           bool   `db:"flag_backup_state"`
	AuthenticatorAAGUID       []byte `db:"authenticator_aaguid"`
	AuthenticatorSignCount    uint32 `db:"authenticator_sign_count"`
	AuthenticatorCloneWarning bool   `db:"authenticator_clone_warning"`
	AuthenticatorAttachment   string `db:"authenticator_attachment"`
}

func (row credentialRow) credential() (webauthn.Credential, error) {
	credential := webauthn.Credential{ //nolint:exhaustruct // attestation details are not stored
		ID:              row.ID,
		PublicKey:       row.PublicKey,
		AttestationType: row.AttestationType,
		Flags: webauthn.CredentialFlags{
			UserPresent:    row.FlagUserPresent,
			UserVerified:   row.FlagUserVerified,
			BackupEligible: row.FlagBackupEligible,
			BackupState:    row.FlagBackupState,
		},
		Authenticator: webauthn.Authenticator{
			AAGUID:       row.AuthenticatorAAGUID,
			SignCount:    row.AuthenticatorSignCount,
			CloneWarning: row.AuthenticatorCloneWarning,
			Attachment:   protocol.AuthenticatorAttachment(row.AuthenticatorAttachment),
		},
	}
	if err := json.Unmarshal(row.Transport, &credential.Transport); err != nil {
		return webauthn.Credential{}, errors.Wrap(err, "JSON decode transport")
	}
	return credential, nil
}

func (h *WebAuthnHandler) getUser(ctx context.Context, id []byte) (*user, error) {
	var (
		err         error
		displayName string
		rows        []credentialRow
	)

	stmt := `SELECT display_name FROM users WHERE id = ?`
	if err = h.dbs.ReadOnly.GetContext(ctx, &displayName, stmt, id); err != nil {
		return nil, errors.Wrap(err, "read user")
	}

	stmt = `SELECT id,
       public_key,
       attestation_type,
       transport,
       flag_user_present,
       flag_user_verified,
       flag_backup_eligible,
       flag_backup_state,
       authenticator_aaguid,
       authenticator_sign_count,
       authenticator_clone_warning,
       authenticator_attachment
FROM credentials
WHERE user_id = ?`
	if err = h.dbs.ReadOnly.SelectContext(ctx, &rows, stmt, id); err != nil {
		return nil, errors.Wrap(err, "query credentials")
	}

	u := user{id: id, displayName: displayName, credentials: make([]webauthn.Credential, 0, len(rows))}
	for _, row := range rows {
		var credential webauthn.Credential
		if credential, err = row.credential(); err != nil {
			return nil, errors.Wrap(err, "decode credential")
		}
		u.credentials = append(u.credentials, credential)
	}

	return &u, nil
}

func (h *WebAuthnHandler) upsertCredential(ctx context.Context, userID []byte, credential *webauthn.Credential) error {
	var err error
	stmt := `INSERT INTO credentials (id,
                         user_id,
                         public_key,
                         attestation_type,
                         transport,
                         flag_user_present,
                         flag_user_verified,
                         flag_backup_eligible,
                         flag_backup_state,
                         authenticator_aaguid,
                         authenticator_sign_count,
                         authenticator_clone_warning,
                         authenticator_attachment)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (id) DO UPDATE SET attestation_type            = excluded.attestation_type,
                               transport                   = excluded.transport,
                               flag_user_present           = excluded.flag_user_present,
                               flag_user_verified          = excluded.flag_user_verified,
                               flag_backup_eligible        = excluded.flag_backup_eligible,
                               flag_backup_state           = excluded.flag_backup_state,
                               authenticator_aaguid        = excluded.authenticator_aaguid,
                               authenticator_sign_count    = excluded.authenticator_sign_count,
                               authenticator_clone_warning = excluded.authenticator_clone_warning,
                               authenticator_attachment    = excluded.authenticator_attachment,
                               updated                     = STRFTIME('%Y-%m-%dT%H:%M:%fZ')`
	var encodedTransport []byte
	if encodedTransport, err = json.Marshal(credential.Transport); err != nil {
		return errors.Wrap(err, "JSON encode transport")
	}
	aaguid := credential.Authenticator.AAGUID
	if aaguid == nil {
		aaguid = []byte{}
	}
	_, err = h.dbs.ReadWrite.ExecContext(
		ctx,
		stmt,
		credential.ID,
		userID,
		credential.PublicKey,
		credential.AttestationType,
		string(encodedTransport),
		credential.Flags.UserPresent,
		credential.Flags.UserVerified,
		credential.Flags.BackupEligible,
		credential.Flags.BackupState,
		aaguid,
		credential.Authenticator.SignCount,
		credential.Authenticator.CloneWarning,
		string(credential.Authenticator.Attachment),
	)
	if err != nil {
		return errors.Wrap(err, "db upsert credential",
			slog.String("user_id", hex.EncodeToString(userID)),
			slog.String("credential_id", hex.EncodeToString(credential.ID)),
		)
	}
	return nil
}

func (h *WebAuthnHandler) userExists(ctx context.Context, userID []byte) (bool, error) {
	stmt := `SELECT EXISTS(SELECT 1 FROM users WHERE id = ?)`
	var exists bool
	if err := h.dbs.ReadOnly.GetContext(ctx, &exists, stmt, userID); err != nil {
		return false, errors.Wrap(err, "query user exists")
	}
	return exists, nil
}
